package lib

import (
	"context"
	"errors"

	"workerlink/src/config"

	"googlemaps.github.io/maps"
)

var mapsClient *maps.Client

func GetMapsClient() (*maps.Client, error) {
	if mapsClient != nil {
		return mapsClient, nil
	}
	cli, err := maps.NewClient(maps.WithAPIKey(config.GAPI_API_KEY))
	if err != nil {
		return nil, err
	}
	mapsClient = cli
	return cli, nil
}

// GeocodeAddress resolves a street address to coordinates. Used when a
// worker registers a home address so offer pushes can carry a distance
// from home.
func GeocodeAddress(ctx context.Context, address string) (float64, float64, error) {
	cli, err := GetMapsClient()
	if err != nil {
		return 0, 0, err
	}
	results, err := cli.Geocode(ctx, &maps.GeocodingRequest{Address: address})
	if err != nil {
		return 0, 0, err
	}
	if len(results) == 0 {
		return 0, 0, errors.New("no geocoding result for address")
	}
	loc := results[0].Geometry.Location
	return loc.Lat, loc.Lng, nil
}
