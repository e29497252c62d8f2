package domain

// DocumentInfo is one entry of the reader's library.
type DocumentInfo struct {
	ID    string `json:"id" yaml:"id"`
	Title string `json:"title" yaml:"title"`
	Path  string `json:"path" yaml:"path"`
	// Annotated is set when drawings are stored for the document.
	Annotated bool `json:"annotated" yaml:"-"`
}

// SessionState is the mutable reading state of the open document.
type SessionState struct {
	SessionID      string      `json:"sessionId"`
	DocumentID     string      `json:"documentId"`
	CurrentPage    int         `json:"currentPage"`
	Orientation    Orientation `json:"orientation"`
	AnnotationMode bool        `json:"annotationMode"`
	Loading        bool        `json:"loading"`
}

// View is a snapshot of what is on screen.
type View struct {
	PageCount      int         `json:"pageCount"`
	CurrentPage    int         `json:"currentPage"`
	Orientation    Orientation `json:"orientation"`
	AnnotationMode bool        `json:"annotationMode"`
	Pair           PagePair    `json:"pair"`
	// AspectRatio is width/height of the first page, 0 when unknown.
	AspectRatio float64 `json:"aspectRatio"`
	// Annotated lists visible pages that carry a non-empty drawing.
	Annotated []int `json:"annotated"`
}

// Lifecycle phases of the hosting application.
type LifecyclePhase string

const (
	PhaseActive     LifecyclePhase = "active"
	PhaseInactive   LifecyclePhase = "inactive"
	PhaseBackground LifecyclePhase = "background"
)

// Event names raised by navigation and the reader service.
const (
	EventPageChanged     = "page:changed"
	EventDrawingsUpdated = "drawings:updated"
	EventDocumentLoaded  = "document:loaded"
	EventDocumentClosed  = "document:closed"
	EventDocumentFailed  = "document:failed"
)

// PageChanged is the payload of EventPageChanged.
type PageChanged struct {
	Page int `json:"page"`
}

// DrawingsUpdated is the payload of EventDrawingsUpdated.
type DrawingsUpdated struct {
	Drawings Drawings `json:"-"`
	Pages    []int    `json:"pages"`
}

// DocumentLoaded is the payload of EventDocumentLoaded.
type DocumentLoaded struct {
	DocumentID string `json:"documentId"`
	PageCount  int    `json:"pageCount"`
	Page       int    `json:"page"`
}

// DocumentFailed is the payload of EventDocumentFailed.
type DocumentFailed struct {
	DocumentID string `json:"documentId"`
	Error      string `json:"error"`
}
