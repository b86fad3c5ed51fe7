package geocoding

import (
	"context"
	"errors"
	"net/http"

	"github.com/mberna113/WNV-ETL-Lab2/internal/models"
)

// Provider is an interface that defines a method for geocoding an address.
// The Geocode method takes a context and an address string as input,
// and returns the corresponding coordinates and an error if any occurs.
type Provider interface {
	Geocode(ctx context.Context, address string) (*models.Coordinates, error)
}

// HTTPClient defines the interface for making HTTP requests.
// This allows for easy mocking in tests.
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// ErrNoResult is returned when the provider answered successfully but has no
// coordinates for the address. Callers use it to tell "not found" apart from
// transport failures and decide whether to skip the row or abort the run.
var ErrNoResult = errors.New("geocoder returned no results")
