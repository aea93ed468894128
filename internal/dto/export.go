package dto

// ArchiveExportRequest queues a background export for later download.
type ArchiveExportRequest struct {
	Kind string `json:"kind" validate:"required,oneof=schedule_csv schedule_pdf walkins_csv"`
}

// ArchiveExportResponse reports the state of an archived export job.
type ArchiveExportResponse struct {
	ID          string `json:"id"`
	Kind        string `json:"kind"`
	Status      string `json:"status"`
	DownloadURL string `json:"download_url,omitempty"`
	ExpiresAt   string `json:"expires_at,omitempty"`
	Error       string `json:"error,omitempty"`
}
