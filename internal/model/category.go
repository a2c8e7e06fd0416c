package model

// ServiceType identifies the target trade being searched for. The set
// is fixed: it drives which exclusion rules and AI few-shot examples
// apply, and is not user-extensible.
type ServiceType string

const (
	ServicePoolBuilders       ServiceType = "Pool Builders"
	ServicePaintingCompanies  ServiceType = "Painting Companies"
	ServiceKitchenRemodeling  ServiceType = "Kitchen Remodeling"
	ServiceCustomHomeBuilders ServiceType = "Custom Home Builders"
	ServiceArtificialTurf     ServiceType = "Artificial Turf Installation"
	ServiceRoofing            ServiceType = "Roofing Contractors"
	ServiceLandscaping        ServiceType = "Landscaping Companies"
	ServiceFencing            ServiceType = "Fencing Companies"
)

// AllServiceTypes returns every known service type.
func AllServiceTypes() []ServiceType {
	return []ServiceType{
		ServicePoolBuilders,
		ServicePaintingCompanies,
		ServiceKitchenRemodeling,
		ServiceCustomHomeBuilders,
		ServiceArtificialTurf,
		ServiceRoofing,
		ServiceLandscaping,
		ServiceFencing,
	}
}

// ValidServiceType reports whether s names a known service type.
func ValidServiceType(s string) bool {
	for _, st := range AllServiceTypes() {
		if string(st) == s {
			return true
		}
	}
	return false
}
