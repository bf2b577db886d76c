package dictation

// Settings configure the browser recognizer for one utterance.
type Settings struct {
	Lang           string `json:"lang"`
	Continuous     bool   `json:"continuous"`
	InterimResults bool   `json:"interimResults"`
}

// DefaultSettings is one final English utterance per session.
func DefaultSettings() Settings {
	return Settings{Lang: "en-US", Continuous: false, InterimResults: false}
}

// Recognizer is the speech capability available to a session.
type Recognizer interface {
	Supported() bool
	Settings() Settings
}

// Browser is the capability the page reports for its own recognizer.
type Browser struct {
	Available bool
	Config    Settings
}

// NewBrowser creates a recognizer with DefaultSettings.
func NewBrowser(available bool) Browser {
	return Browser{Available: available, Config: DefaultSettings()}
}

func (b Browser) Supported() bool    { return b.Available }
func (b Browser) Settings() Settings { return b.Config }
