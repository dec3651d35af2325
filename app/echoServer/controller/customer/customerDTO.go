package customer

type NotesReq struct {
	Notes string `json:"notes"`
}
