package rendering

import (
	"github.com/temirlan/finance-dashboard-api/internal/domain"
)

// Artifact is a rendered report: raw bytes plus the content type they should
// be served and stored with.
type Artifact struct {
	Bytes       []byte
	ContentType string
	Extension   string
}

// Renderer turns an analytics document into an artifact. Implementations are
// pure functions of the document: no clock reads, no randomness, so the same
// document always renders to byte-identical output.
type Renderer interface {
	Render(document *domain.AnalyticsDocument) (*Artifact, error)
}
