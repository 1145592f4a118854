package domain

// MaxItineraries bounds the saved itineraries kept per profile.
const MaxItineraries = 20

type UserProfile struct {
	Email       string      `json:"email"`
	Name        string      `json:"name"`
	Avatar      string      `json:"avatar"`
	Itineraries []Itinerary `json:"itineraries"`
}

// NewProfile returns an empty profile for email.
func NewProfile(email string) *UserProfile {
	return &UserProfile{Email: email, Itineraries: []Itinerary{}}
}

// Itinerary is a saved piece of generated content. It is never edited once
// stored; it can only be removed by ID.
type Itinerary struct {
	ID          string   `json:"id"`
	Destination string   `json:"destination"`
	Days        int      `json:"days"`
	Budget      string   `json:"budget"`
	Itinerary   string   `json:"itinerary"`
	Image       string   `json:"image"`
	Tags        []string `json:"tags"`
	CreatedAt   string   `json:"createdAt"`
	Status      string   `json:"status"`
}

// ProfileUpdate carries a shallow merge: every non-nil field replaces the
// stored value.
type ProfileUpdate struct {
	Name   *string
	Avatar *string
}

// Snapshot is the whole persisted document: identifier -> profile.
type Snapshot map[string]*UserProfile

type UpdateProfileRequest struct {
	Email  string  `json:"email" validate:"required,email"`
	Name   *string `json:"name"`
	Avatar *string `json:"avatar"`
}

type SaveItineraryRequest struct {
	Email       string   `json:"email" validate:"required,email"`
	ID          string   `json:"id"`
	Destination string   `json:"destination"`
	Days        int      `json:"days" validate:"gte=0"`
	Budget      string   `json:"budget"`
	Itinerary   string   `json:"itinerary"`
	Image       string   `json:"image"`
	Tags        []string `json:"tags"`
	CreatedAt   string   `json:"createdAt"`
	Status      string   `json:"status"`
}

// ToItinerary copies the item fields out of the request.
func (r SaveItineraryRequest) ToItinerary() Itinerary {
	return Itinerary{
		ID:          r.ID,
		Destination: r.Destination,
		Days:        r.Days,
		Budget:      r.Budget,
		Itinerary:   r.Itinerary,
		Image:       r.Image,
		Tags:        r.Tags,
		CreatedAt:   r.CreatedAt,
		Status:      r.Status,
	}
}

type DeleteItineraryRequest struct {
	Email       string `json:"email" validate:"required,email"`
	ItineraryID string `json:"itineraryId" validate:"required"`
}
