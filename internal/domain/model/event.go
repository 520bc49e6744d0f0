package model

import (
	"time"

	"github.com/okian/fest/internal/domain/catalog"
)

// Event is a festival competition item. Name is unique ignoring case.
type Event struct {
	ID          string            `json:"id"`
	Name        string            `json:"name"`
	Category    Category          `json:"category"`
	StageType   catalog.StageType `json:"stageType"`
	IsGeneral   bool              `json:"isGeneral"`
	Description string            `json:"description,omitempty"`
	Venue       string            `json:"venue,omitempty"`
	Date        string            `json:"date,omitempty"`
	ImageURL    string            `json:"imageURL,omitempty"`
	CreatedAt   time.Time         `json:"createdAt"`
	UpdatedAt   time.Time         `json:"updatedAt"`
}

// Registration is a live participant record submitted through the site.
type Registration struct {
	ID             string    `json:"id"`
	FullName       string    `json:"fullName"`
	CICNumber      string    `json:"cicNumber,omitempty"`
	ChestNumber    string    `json:"chestNumber,omitempty"`
	Team           string    `json:"team,omitempty"`
	OnStageEvents  []string  `json:"onStageEvents,omitempty"`
	OffStageEvents []string  `json:"offStageEvents,omitempty"`
	GeneralEvents  []string  `json:"generalEvents,omitempty"`
	CreatedAt      time.Time `json:"createdAt"`
}

// GalleryItem is an uploaded festival photo.
type GalleryItem struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Caption   string    `json:"caption,omitempty"`
	ImageURL  string    `json:"imageURL"`
	CreatedAt time.Time `json:"createdAt"`
}

// Announcement is a notice shown on the public site.
type Announcement struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Body      string    `json:"body"`
	Pinned    bool      `json:"pinned"`
	CreatedAt time.Time `json:"createdAt"`
}
