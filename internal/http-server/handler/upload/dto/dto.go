package dto

// UploadRequest describes the received file part before processing.
type UploadRequest struct {
	Filename    string `validate:"required"`
	ContentType string `validate:"required,startswith=image/"`
	Size        int64  `validate:"gt=0"`
}

type UploadResponse struct {
	Success  bool   `json:"success"`
	Filename string `json:"filename"`
	URL      string `json:"url"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}
