package geocoding_test

import (
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"googlemaps.github.io/maps"

	"github.com/mberna113/WNV-ETL-Lab2/internal/geocoding"
)

// mockGoogleClient is a mock implementation of GoogleAPIClient for testing.
type mockGoogleClient struct {
	geocodeFunc func(ctx context.Context, r *maps.GeocodingRequest) ([]maps.GeocodingResult, error)
}

func (m *mockGoogleClient) Geocode(
	ctx context.Context,
	r *maps.GeocodingRequest,
) ([]maps.GeocodingResult, error) {
	return m.geocodeFunc(ctx, r)
}

func TestGoogleProvider_Geocode(t *testing.T) {
	ctx := context.Background()
	logger := slog.Default()

	t.Run("successful geocoding", func(t *testing.T) {
		mockClient := &mockGoogleClient{
			geocodeFunc: func(_ context.Context, r *maps.GeocodingRequest) ([]maps.GeocodingResult, error) {
				assert.Equal(t, "1234 Main St Boulder CO", r.Address)
				result := maps.GeocodingResult{}
				result.Geometry.Location = maps.LatLng{Lat: 40.01, Lng: -105.27}
				return []maps.GeocodingResult{result}, nil
			},
		}

		provider := geocoding.NewGoogleProvider(mockClient, logger)
		coords, err := provider.Geocode(ctx, "1234 Main St Boulder CO")

		require.NoError(t, err)
		require.NotNil(t, coords)
		assert.InEpsilon(t, 40.01, coords.Latitude, 0.0001)
		assert.InEpsilon(t, -105.27, coords.Longitude, 0.0001)
	})

	t.Run("empty response maps to no result", func(t *testing.T) {
		mockClient := &mockGoogleClient{
			geocodeFunc: func(_ context.Context, _ *maps.GeocodingRequest) ([]maps.GeocodingResult, error) {
				return nil, nil
			},
		}

		provider := geocoding.NewGoogleProvider(mockClient, logger)
		coords, err := provider.Geocode(ctx, "nowhere")

		require.Error(t, err)
		require.Nil(t, coords)
		assert.ErrorIs(t, err, geocoding.ErrNoResult)
	})

	t.Run("client error is a transport failure", func(t *testing.T) {
		mockClient := &mockGoogleClient{
			geocodeFunc: func(_ context.Context, _ *maps.GeocodingRequest) ([]maps.GeocodingResult, error) {
				return nil, assert.AnError
			},
		}

		provider := geocoding.NewGoogleProvider(mockClient, logger)
		coords, err := provider.Geocode(ctx, "some address")

		require.Error(t, err)
		require.Nil(t, coords)
		assert.NotErrorIs(t, err, geocoding.ErrNoResult)
		assert.ErrorIs(t, err, assert.AnError)
	})
}
