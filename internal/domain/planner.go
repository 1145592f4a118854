package domain

type GenerateItineraryRequest struct {
	Destination     string   `json:"destination" validate:"required"`
	Days            int      `json:"days" validate:"gte=0,lte=60"`
	Budget          string   `json:"budget"`
	Interests       []string `json:"interests"`
	Notes           string   `json:"notes"`
	AdditionalNotes string   `json:"additionalNotes"`
}

type AskQuestionRequest struct {
	Question    string `json:"question" validate:"required"`
	Destination string `json:"destination"`
}

type LocationImageRequest struct {
	Location string `json:"location" validate:"required"`
}

// ImageCandidate is one result from an external image search.
type ImageCandidate struct {
	URL            string
	Description    string
	AltDescription string
}
