// package models defines the data model for the artistmix playlist builder
package models

import (
	"time"
)

// Model defines the base interface for all persistent models.
type Model interface {
	ID() string           // ID returns the unique identifier for this model
	CreatedAt() time.Time // CreatedAt returns when this model was created
	UpdatedAt() time.Time // UpdatedAt returns when this model was last updated
	Validate() error      // Validate checks if the model's data is valid and returns an error if not
}

// Repository defines the interface for data access operations.
// Implementations handle database interactions for specific model types.
type Repository[T Model] interface {
	Upsert(model T) error                      // Upsert inserts a new model or updates the existing one in place
	Get(id string) (T, error)                  // Get retrieves a model by its ID
	Delete(id string) error                    // Delete removes a model from the database by its ID
	List(criteria map[string]any) ([]T, error) // List retrieves all models matching the given criteria
}

// CurrentUser is the profile of the session's authenticated Spotify user.
type CurrentUser struct {
	ID          string `json:"id"`
	DisplayName string `json:"display_name"`
	ExternalURL string `json:"external_url"`
	ImageURL    string `json:"image_url,omitempty"`
}

// Artist is a resolved artist from a search query.
type Artist struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	ExternalURL string `json:"external_url"`
	ImageURL    string `json:"image_url,omitempty"`
}

// Playlist is playlist metadata, either freshly created or listed from the user's library.
type Playlist struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	ExternalURL string `json:"external_url"`
	ImageURL    string `json:"image_url,omitempty"`
}
