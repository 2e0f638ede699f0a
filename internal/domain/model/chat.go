package model

// ChatRequest is the body of a chat call.
type ChatRequest struct {
	Message         string       `json:"message"`
	Context         *ChatContext `json:"context,omitempty"`
	PreviousMessage string       `json:"previousMessage,omitempty"`
}

// ChatContext carries what the user is looking at.
type ChatContext struct {
	CurrentView *View `json:"currentView,omitempty"`
}

// View is the map viewport.
type View struct {
	Lat  float64 `json:"lat"`
	Lng  float64 `json:"lng"`
	Zoom float64 `json:"zoom"`
}

// ChatResponse is the answer of a chat backend. HexagonData and Highlighted
// stay loosely typed; they are validated by the normalizer.
type ChatResponse struct {
	Response    string `json:"response"`
	HexagonData any    `json:"hexagonData,omitempty"`
	Highlighted any    `json:"highlighted,omitempty"`
}
