package model

// Settings document ids inside the settings collection.
const (
	SettingsSiteID   = "site"
	SettingsPointsID = "points"
)

// PointsSchemaVersion is the current layout of the points document.
const PointsSchemaVersion = 2

// SiteDocument is the stored settings/site document.
type SiteDocument struct {
	RegistrationOpen *bool `json:"registrationOpen,omitempty"`
	MaintenanceMode  *bool `json:"maintenanceMode,omitempty"`
}

// PointsDocument is the stored settings/points document. ShowPoints is the
// combined flag used before the home/results split (schema version 1).
type PointsDocument struct {
	ShowPointsHome    *bool `json:"showPointsHome,omitempty"`
	ShowPointsResults *bool `json:"showPointsResults,omitempty"`
	ShowPoints        *bool `json:"showPoints,omitempty"`
	SchemaVersion     int   `json:"schemaVersion"`
}

// Settings is the resolved, typed view of both settings documents.
type Settings struct {
	RegistrationOpen  bool `json:"registrationOpen"`
	MaintenanceMode   bool `json:"maintenanceMode"`
	ShowPointsHome    bool `json:"showPointsHome"`
	ShowPointsResults bool `json:"showPointsResults"`
}

// DefaultSettings applies when a flag has never been stored.
func DefaultSettings() Settings {
	return Settings{RegistrationOpen: true}
}

// MigratePoints upgrades a points document to PointsSchemaVersion. The legacy
// combined flag is copied into each split flag that is absent. The bool
// result reports whether the document changed and must be persisted.
func MigratePoints(doc PointsDocument) (PointsDocument, bool) {
	if doc.SchemaVersion >= PointsSchemaVersion {
		return doc, false
	}
	if doc.ShowPoints != nil {
		if doc.ShowPointsHome == nil {
			v := *doc.ShowPoints
			doc.ShowPointsHome = &v
		}
		if doc.ShowPointsResults == nil {
			v := *doc.ShowPoints
			doc.ShowPointsResults = &v
		}
	}
	doc.SchemaVersion = PointsSchemaVersion
	return doc, true
}

// ResolveSettings merges the stored documents over DefaultSettings. The
// points document must already be migrated.
func ResolveSettings(site SiteDocument, points PointsDocument) Settings {
	s := DefaultSettings()
	if site.RegistrationOpen != nil {
		s.RegistrationOpen = *site.RegistrationOpen
	}
	if site.MaintenanceMode != nil {
		s.MaintenanceMode = *site.MaintenanceMode
	}
	if points.ShowPointsHome != nil {
		s.ShowPointsHome = *points.ShowPointsHome
	}
	if points.ShowPointsResults != nil {
		s.ShowPointsResults = *points.ShowPointsResults
	}
	return s
}

// Bool returns a pointer to v.
func Bool(v bool) *bool { return &v }
