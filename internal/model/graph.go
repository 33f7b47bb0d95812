package model

// ConfigGraph is the slowly-changing configuration root, persisted to
// pool-config per spec §3/§6.
type ConfigGraph struct {
	Equipment       EquipmentConfig
	Bodies          *Collection[BodyConfig]
	Circuits        *Collection[CircuitConfig]
	Features        *Collection[FeatureConfig]
	Pumps           *Collection[PumpConfig]
	Heaters         *Collection[HeaterConfig]
	Chlorinators    *Collection[ChlorinatorConfig]
	ChemControllers *Collection[ChemControllerConfig]
	Schedules       *Collection[ScheduleConfig]
	Valves          *Collection[ValveConfig]
	Filters         *Collection[FilterConfig]
	CircuitGroups   *Collection[CircuitGroupConfig]
	LightGroups     *Collection[CircuitGroupConfig]
	Covers          *Collection[CoverConfig]
	Remotes         *Collection[RemoteConfig]
}

// NewConfigGraph returns an empty, ready-to-populate ConfigGraph.
func NewConfigGraph() *ConfigGraph {
	return &ConfigGraph{
		Bodies:          NewCollection[BodyConfig](),
		Circuits:        NewCollection[CircuitConfig](),
		Features:        NewCollection[FeatureConfig](),
		Pumps:           NewCollection[PumpConfig](),
		Heaters:         NewCollection[HeaterConfig](),
		Chlorinators:    NewCollection[ChlorinatorConfig](),
		ChemControllers: NewCollection[ChemControllerConfig](),
		Schedules:       NewCollection[ScheduleConfig](),
		Valves:          NewCollection[ValveConfig](),
		Filters:         NewCollection[FilterConfig](),
		CircuitGroups:   NewCollection[CircuitGroupConfig](),
		LightGroups:     NewCollection[CircuitGroupConfig](),
		Covers:          NewCollection[CoverConfig](),
		Remotes:         NewCollection[RemoteConfig](),
	}
}

// StateGraph is the rapidly-changing mirror of ConfigGraph, persisted to
// pool-state.
type StateGraph struct {
	Equipment       EquipmentState
	Bodies          *Collection[BodyState]
	Circuits        *Collection[CircuitState]
	Features        *Collection[FeatureState]
	Pumps           *Collection[PumpState]
	Heaters         *Collection[HeaterState]
	Chlorinators    *Collection[ChlorinatorState]
	ChemControllers *Collection[ChemControllerState]
	Schedules       *Collection[ScheduleState]
	Valves          *Collection[ValveState]
	Filters         *Collection[FilterState]
	CircuitGroups   *Collection[CircuitGroupState]
	LightGroups     *Collection[CircuitGroupState]
	Covers          *Collection[CoverState]
}

func NewStateGraph() *StateGraph {
	return &StateGraph{
		Bodies:          NewCollection[BodyState](),
		Circuits:        NewCollection[CircuitState](),
		Features:        NewCollection[FeatureState](),
		Pumps:           NewCollection[PumpState](),
		Heaters:         NewCollection[HeaterState](),
		Chlorinators:    NewCollection[ChlorinatorState](),
		ChemControllers: NewCollection[ChemControllerState](),
		Schedules:       NewCollection[ScheduleState](),
		Valves:          NewCollection[ValveState](),
		Filters:         NewCollection[FilterState](),
		CircuitGroups:   NewCollection[CircuitGroupState](),
		LightGroups:     NewCollection[CircuitGroupState](),
		Covers:          NewCollection[CoverState](),
	}
}

// PruneOrphans removes state entries whose configuration counterpart no
// longer exists, restoring the "orphan counts are 0 after load" invariant
// (spec §8, invariant 5). It returns the number of entries removed.
func (s *StateGraph) PruneOrphans(cfg *ConfigGraph) int {
	removed := 0
	for _, st := range s.Bodies.All() {
		if _, ok := cfg.Bodies.Get(st.ID); !ok {
			s.Bodies.Remove(st.ID)
			removed++
		}
	}
	for _, st := range s.Circuits.All() {
		if _, ok := cfg.Circuits.Get(st.ID); !ok {
			s.Circuits.Remove(st.ID)
			removed++
		}
	}
	for _, st := range s.Features.All() {
		if _, ok := cfg.Features.Get(st.ID); !ok {
			s.Features.Remove(st.ID)
			removed++
		}
	}
	for _, st := range s.Pumps.All() {
		if _, ok := cfg.Pumps.Get(st.ID); !ok {
			s.Pumps.Remove(st.ID)
			removed++
		}
	}
	for _, st := range s.Heaters.All() {
		if _, ok := cfg.Heaters.Get(st.ID); !ok {
			s.Heaters.Remove(st.ID)
			removed++
		}
	}
	for _, st := range s.Chlorinators.All() {
		if _, ok := cfg.Chlorinators.Get(st.ID); !ok {
			s.Chlorinators.Remove(st.ID)
			removed++
		}
	}
	for _, st := range s.ChemControllers.All() {
		if _, ok := cfg.ChemControllers.Get(st.ID); !ok {
			s.ChemControllers.Remove(st.ID)
			removed++
		}
	}
	for _, st := range s.Schedules.All() {
		if _, ok := cfg.Schedules.Get(st.ID); !ok {
			s.Schedules.Remove(st.ID)
			removed++
		}
	}
	for _, st := range s.Valves.All() {
		if _, ok := cfg.Valves.Get(st.ID); !ok {
			s.Valves.Remove(st.ID)
			removed++
		}
	}
	for _, st := range s.Filters.All() {
		if _, ok := cfg.Filters.Get(st.ID); !ok {
			s.Filters.Remove(st.ID)
			removed++
		}
	}
	for _, st := range s.CircuitGroups.All() {
		if _, ok := cfg.CircuitGroups.Get(st.ID); !ok {
			s.CircuitGroups.Remove(st.ID)
			removed++
		}
	}
	for _, st := range s.LightGroups.All() {
		if _, ok := cfg.LightGroups.Get(st.ID); !ok {
			s.LightGroups.Remove(st.ID)
			removed++
		}
	}
	for _, st := range s.Covers.All() {
		if _, ok := cfg.Covers.Get(st.ID); !ok {
			s.Covers.Remove(st.ID)
			removed++
		}
	}
	return removed
}
