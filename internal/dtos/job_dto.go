package dtos

type JobExtractionRequest struct {
	RawAd string `json:"raw_ad" binding:"required"`
}

// JobFilter holds the query parameters of the job listing.
type JobFilter struct {
	Query    string `form:"q"`
	JobType  string `form:"job_type"`
	Location string `form:"location"`
	Mine     bool   `form:"mine"`
	Limit    int    `form:"limit" binding:"omitempty,min=1,max=100"`
	Offset   int    `form:"offset" binding:"omitempty,min=0"`

	// EmployerID is set from the caller's identity when Mine is true.
	EmployerID string `form:"-"`
}

type JobStatusRequest struct {
	Status string `json:"status" binding:"required,oneof=OPEN CLOSED"`
}
