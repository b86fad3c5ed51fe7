package models

// PointRecord is one row of the transformed output: a coordinate pair tagged
// with a category label. Both coordinates are guaranteed finite by the
// transformer; malformed values never reach a PointRecord.
type PointRecord struct {
	X        float64 // X is the longitude of the point.
	Y        float64 // Y is the latitude of the point.
	Category string  // Category is the point classification, e.g. "Residential".
}
