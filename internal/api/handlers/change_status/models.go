package change_status

// ChangeStatusRequest HTTP request model
type ChangeStatusRequest struct {
	Status string  `json:"status"`
	Reason string  `json:"reason,omitempty"` // обязательна при отмене
	Note   *string `json:"note,omitempty"`
}
