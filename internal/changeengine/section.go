package changeengine

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/pentacore/bridge/internal/bridgeerr"
	"github.com/pentacore/bridge/internal/model"
)

// SectionItem pairs one entity's configuration and live-state halves, the
// shape GetSection returns for a single id-addressed lookup.
type SectionItem[C model.Identifiable, S model.Identifiable] struct {
	Config C
	State  S
}

// GetSection implements the getSection(path) read operation of spec §6: a
// single path-addressed read against the live graphs, for collaborators
// that want one collection or one entity rather than a full
// SnapshotConfig/SnapshotState pair. path is "<section>" for the whole
// collection (in stable id order) or "<section>/<id>" for one entity;
// section names are the plural collection names ("circuits", "bodies",
// "chemControllers", ...) or "equipment" for the controller singleton.
func (e *Engine) GetSection(path string) (interface{}, error) {
	section, id, hasID, err := splitSectionPath(path)
	if err != nil {
		return nil, err
	}

	cfg := e.SnapshotConfig()
	st := e.SnapshotState()

	if section == "equipment" {
		return SectionItem[model.EquipmentConfig, model.EquipmentState]{Config: cfg.Equipment, State: st.Equipment}, nil
	}

	switch section {
	case "bodies":
		return lookupSection("body", cfg.Bodies, st.Bodies, id, hasID)
	case "circuits":
		return lookupSection("circuit", cfg.Circuits, st.Circuits, id, hasID)
	case "features":
		return lookupSection("feature", cfg.Features, st.Features, id, hasID)
	case "pumps":
		return lookupSection("pump", cfg.Pumps, st.Pumps, id, hasID)
	case "heaters":
		return lookupSection("heater", cfg.Heaters, st.Heaters, id, hasID)
	case "chlorinators":
		return lookupSection("chlorinator", cfg.Chlorinators, st.Chlorinators, id, hasID)
	case "chemControllers":
		return lookupSection("chemController", cfg.ChemControllers, st.ChemControllers, id, hasID)
	case "schedules":
		return lookupSection("schedule", cfg.Schedules, st.Schedules, id, hasID)
	case "valves":
		return lookupSection("valve", cfg.Valves, st.Valves, id, hasID)
	case "filters":
		return lookupSection("filter", cfg.Filters, st.Filters, id, hasID)
	case "circuitGroups":
		return lookupSection("circuitGroup", cfg.CircuitGroups, st.CircuitGroups, id, hasID)
	case "lightGroups":
		return lookupSection("lightGroup", cfg.LightGroups, st.LightGroups, id, hasID)
	case "covers":
		return lookupSection("cover", cfg.Covers, st.Covers, id, hasID)
	case "remotes":
		if hasID {
			c, ok := cfg.Remotes.Get(id)
			if !ok {
				return nil, &bridgeerr.EquipmentNotFoundError{Kind: "remote", ID: id}
			}
			return c, nil
		}
		return cfg.Remotes.All(), nil
	default:
		return nil, fmt.Errorf("getSection: unknown section %q", section)
	}
}

// lookupSection pairs a config collection with its state mirror, returning
// either one SectionItem (hasID) or the full slice in stable id order.
func lookupSection[C model.Identifiable, S model.Identifiable](kind string, cfgCol *model.Collection[C], stCol *model.Collection[S], id int, hasID bool) (interface{}, error) {
	if hasID {
		c, ok := cfgCol.Get(id)
		if !ok {
			return nil, &bridgeerr.EquipmentNotFoundError{Kind: kind, ID: id}
		}
		s, _ := stCol.Get(id)
		return SectionItem[C, S]{Config: c, State: s}, nil
	}
	all := cfgCol.All()
	out := make([]SectionItem[C, S], 0, len(all))
	for _, c := range all {
		s, _ := stCol.Get(c.EntityID())
		out = append(out, SectionItem[C, S]{Config: c, State: s})
	}
	return out, nil
}

func splitSectionPath(path string) (section string, id int, hasID bool, err error) {
	path = strings.Trim(path, "/")
	if path == "" {
		return "", 0, false, fmt.Errorf("getSection: empty path")
	}
	parts := strings.SplitN(path, "/", 2)
	if len(parts) == 1 {
		return parts[0], 0, false, nil
	}
	id, err = strconv.Atoi(parts[1])
	if err != nil {
		return "", 0, false, fmt.Errorf("getSection: invalid id %q in path %q", parts[1], path)
	}
	return parts[0], id, true, nil
}
