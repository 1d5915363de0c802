// Package model holds the plain data types shared between the scheduler,
// the AgentCore dispatcher and the wire codec: the assignment path, the
// check assignment itself, and the handle passed into a running check.
package model

import "fmt"

// Path uniquely identifies one scheduled (asset, check) pair on this probe.
// It intentionally carries no behavior — it is used as a map key throughout
// the scheduler, so it must stay comparable.
type Path struct {
	ZoneID      int64
	AssetID     int64
	CollectorID int64
}

// String renders the path the way it is logged and embedded in error
// messages: "zone/asset/collector".
func (p Path) String() string {
	return fmt.Sprintf("%d/%d/%d", p.ZoneID, p.AssetID, p.CollectorID)
}

// Names identifies the human-readable asset and check name carried
// alongside a Path. Two wire shapes are observed in the wild: a bare
// check_name and this richer (asset_name, check_name) pair. This type is
// the canonical richer form; decoding a bare check_name populates only
// CheckName and leaves AssetName empty.
type Names struct {
	AssetName string
	CheckName string
}

// Assignment is one entry of a coordinator-pushed assignment snapshot: the
// path it applies to, the asset/check names for logging, and the raw
// key/value configuration for the check (which must contain "_interval").
type Assignment struct {
	Path   Path
	Names  Names
	Config map[string]any
}

// AssetHandle is the value passed into a check invocation: enough identity
// for the check to log against and to resolve its own asset-level config.
type AssetHandle struct {
	ID        int64
	AssetName string
	CheckName string
}
