package stats

import (
	"errors"
	"math"
	"sort"

	"gonum.org/v1/gonum/stat/distuv"
)

// KMStep is the Kaplan-Meier estimate just after Time.
type KMStep struct {
	Time     float64
	AtRisk   int
	Events   int
	Censored int
	Survival float64
}

var errLength = errors.New("times and events differ in length")

type observation struct {
	time  float64
	event bool
}

func observations(times []float64, events []int) ([]observation, error) {
	if len(times) != len(events) {
		return nil, errLength
	}
	var obs = make([]observation, len(times))
	for i := range times {
		obs[i] = observation{time: times[i], event: events[i] != 0}
	}
	sort.SliceStable(obs, func(i, j int) bool { return obs[i].time < obs[j].time })
	return obs, nil
}

// KaplanMeier estimates the survival function from right-censored data.
// events[i] is 1 when the event was observed at times[i] and 0 when the
// observation was censored there. The first step is at time 0 with survival 1.
func KaplanMeier(times []float64, events []int) ([]KMStep, error) {
	var obs, err = observations(times, events)
	if err != nil {
		return nil, err
	}
	var (
		steps    = []KMStep{{Time: 0, AtRisk: len(obs), Survival: 1}}
		atRisk   = len(obs)
		survival = 1.0
	)
	for i := 0; i < len(obs); {
		var (
			t        = obs[i].time
			d, c     = 0, 0
			startRun = atRisk
		)
		for ; i < len(obs) && obs[i].time == t; i++ {
			if obs[i].event {
				d++
			} else {
				c++
			}
		}
		if d > 0 {
			survival *= 1 - float64(d)/float64(startRun)
		}
		atRisk -= d + c
		if t == 0 && len(steps) == 1 {
			steps[0] = KMStep{Time: 0, AtRisk: startRun, Events: d, Censored: c, Survival: survival}
			continue
		}
		steps = append(steps, KMStep{Time: t, AtRisk: startRun, Events: d, Censored: c, Survival: survival})
	}
	return steps, nil
}

// LogRankResult compares two survival distributions.
type LogRankResult struct {
	ChiSquare float64
	P         float64

	Observed1, Expected1 float64
	Observed2, Expected2 float64
}

// LogRank runs the two-group log-rank test with one degree of freedom.
// With no informative event times the statistic is 0 and P is 1.
func LogRank(times1 []float64, events1 []int, times2 []float64, events2 []int) (LogRankResult, error) {
	var g1, err = observations(times1, events1)
	if err != nil {
		return LogRankResult{}, err
	}
	g2, err := observations(times2, events2)
	if err != nil {
		return LogRankResult{}, err
	}

	var eventTimes = make(map[float64]struct{})
	for _, o := range g1 {
		if o.event {
			eventTimes[o.time] = struct{}{}
		}
	}
	for _, o := range g2 {
		if o.event {
			eventTimes[o.time] = struct{}{}
		}
	}
	var ts = make([]float64, 0, len(eventTimes))
	for t := range eventTimes {
		ts = append(ts, t)
	}
	sort.Float64s(ts)

	var (
		r        LogRankResult
		variance float64
		i1, i2   int
		n1       = float64(len(g1))
		n2       = float64(len(g2))
	)
	for _, t := range ts {
		// drop everyone who left the risk set before t
		for ; i1 < len(g1) && g1[i1].time < t; i1++ {
			n1--
		}
		for ; i2 < len(g2) && g2[i2].time < t; i2++ {
			n2--
		}
		var d1, d2 float64
		for j := i1; j < len(g1) && g1[j].time == t; j++ {
			if g1[j].event {
				d1++
			}
		}
		for j := i2; j < len(g2) && g2[j].time == t; j++ {
			if g2[j].event {
				d2++
			}
		}
		var (
			n = n1 + n2
			d = d1 + d2
		)
		if n == 0 {
			continue
		}
		var e1 = d * n1 / n
		r.Observed1 += d1
		r.Observed2 += d2
		r.Expected1 += e1
		r.Expected2 += d - e1
		if n > 1 {
			variance += d * (n1 / n) * (n2 / n) * (n - d) / (n - 1)
		}
	}

	if variance <= 0 {
		r.P = 1
		return r, nil
	}
	var z = r.Observed1 - r.Expected1
	r.ChiSquare = z * z / variance
	r.P = distuv.ChiSquared{K: 1}.Survival(r.ChiSquare)
	if math.IsNaN(r.P) {
		r.P = 1
	}
	return r, nil
}
