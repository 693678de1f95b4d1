package interfaces

import "portal_automation/domain/entities"

// ArtifactStore persists what a run leaves behind
type ArtifactStore interface {
	// ScreenshotPath returns a fresh file path for a named screenshot
	ScreenshotPath(name string) (string, error)

	// StatePath returns where the login state of a portal is kept
	StatePath(portal string) string

	// SaveReport writes the run report
	SaveReport(report entities.Report) (string, error)

	// LoadReport reads a run report by run id
	LoadReport(runID string) (entities.Report, error)
}
