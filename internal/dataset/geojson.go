package dataset

import (
	"latencyviz/internal/models"

	geojson "github.com/paulmach/go.geojson"
)

// NodesFeatureCollection renders nodes as GeoJSON points ([lon, lat])
func NodesFeatureCollection(nodes []models.Node) *geojson.FeatureCollection {
	fc := geojson.NewFeatureCollection()
	for _, n := range nodes {
		f := geojson.NewPointFeature([]float64{n.Lon, n.Lat})
		f.ID = n.ID
		f.SetProperty("id", n.ID)
		f.SetProperty("exchange", string(n.Exchange))
		f.SetProperty("provider", string(n.Provider))
		f.SetProperty("region", n.Region)
		fc.AddFeature(f)
	}
	return fc
}

// RegionsFeatureCollection renders cloud-region markers as GeoJSON points
func RegionsFeatureCollection(regions []models.CloudRegion) *geojson.FeatureCollection {
	fc := geojson.NewFeatureCollection()
	for _, r := range regions {
		f := geojson.NewPointFeature([]float64{r.Lon, r.Lat})
		f.ID = r.ID
		f.SetProperty("id", r.ID)
		f.SetProperty("provider", string(r.Provider))
		f.SetProperty("region", r.Region)
		fc.AddFeature(f)
	}
	return fc
}
