package session

import "github.com/markqiu/red-blud-eyes/sim"

// State is the JSON snapshot served to the front end.
type State struct {
	RunID            string      `json:"runId"`
	NumRed           int         `json:"numRed"`
	NumBlue          int         `json:"numBlue"`
	VillagerMode     string      `json:"villagerMode"`
	Style            string      `json:"openaiStyle"`
	AnnouncementMade bool        `json:"announcementMade"`
	CurrentDay       int         `json:"currentDay"`
	KnowledgeLevel   int         `json:"knowledgeLevel"`
	Villagers        []sim.Agent `json:"villagers"`
	DailyLog         []string    `json:"dailyLog"`
}

// state deep-copies the run so the snapshot stays valid after the lock is
// released.
func (r *run) state() *State {
	st := &State{
		RunID:            r.id,
		NumRed:           r.numRed,
		NumBlue:          r.numBlue,
		VillagerMode:     r.mode,
		Style:            string(r.style),
		AnnouncementMade: r.pop.Announced,
		CurrentDay:       r.pop.Round,
		KnowledgeLevel:   r.pop.KnowledgeLevel,
		Villagers:        make([]sim.Agent, 0, len(r.pop.Agents)),
		DailyLog:         append([]string{}, r.pop.Events...),
	}
	for _, a := range r.pop.Agents {
		c := *a
		c.ReasoningLog = append([]string{}, a.ReasoningLog...)
		if a.DepartedOn != nil {
			d := *a.DepartedOn
			c.DepartedOn = &d
		}
		st.Villagers = append(st.Villagers, c)
	}
	return st
}
