package dtos

type ApplyRequest struct {
	CoverLetter string `json:"cover_letter" binding:"max=5000"`
}

type ApplicationStatusRequest struct {
	Status string `json:"status" binding:"required,oneof=REVIEWED INTERVIEW OFFER REJECTED"`
	Note   string `json:"note" binding:"max=1000"`
}
