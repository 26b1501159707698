package models

// VehicleType is an ordinal capacity class. The ranking below is a total
// order: a vehicle can carry any job that asks for a smaller class.
type VehicleType string

const (
	VehicleSmallVan    VehicleType = "small_van"
	VehicleMediumVan   VehicleType = "medium_van"
	VehicleLargeVan    VehicleType = "large_van"
	VehicleLuton       VehicleType = "luton"
	VehicleRigid7_5T   VehicleType = "rigid_7_5t"
	VehicleRigid12T    VehicleType = "rigid_12t"
	VehicleRigid18T    VehicleType = "rigid_18t"
	VehicleArticulated VehicleType = "articulated"
)

// vehicleOrder is ascending by capacity.
var vehicleOrder = []VehicleType{
	VehicleSmallVan,
	VehicleMediumVan,
	VehicleLargeVan,
	VehicleLuton,
	VehicleRigid7_5T,
	VehicleRigid12T,
	VehicleRigid18T,
	VehicleArticulated,
}

var vehicleRank = func() map[VehicleType]int {
	m := make(map[VehicleType]int, len(vehicleOrder))
	for i, vt := range vehicleOrder {
		m[vt] = i
	}
	return m
}()

// VehicleRank returns the capacity rank of vt (0 = smallest). Unknown types
// report ok=false and must not be compared ordinally.
func VehicleRank(vt VehicleType) (int, bool) {
	r, ok := vehicleRank[vt]
	return r, ok
}
