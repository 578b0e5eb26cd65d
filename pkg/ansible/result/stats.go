package result

import (
	"bufio"
	"regexp"
	"strconv"
	"strings"
)

var recapCounterRe = regexp.MustCompile(`\b(ok|changed|unreachable|failed|skipped|rescued|ignored)=(\d+)`)

// Stats holds the PLAY RECAP counters summed over every host
type Stats struct {
	Hosts       int
	Ok          int
	Changed     int
	Unreachable int
	Failures    int
	Skipped     int
	Rescued     int
	Ignored     int
}

// Success reports that no host failed or was unreachable
func (s *Stats) Success() bool {
	return s.Failures == 0 && s.Unreachable == 0
}

// ParseStats extracts the PLAY RECAP counters from playbook output
func ParseStats(output string) *Stats {
	p := newStatsParser()
	scanner := bufio.NewScanner(strings.NewReader(output))
	for scanner.Scan() {
		p.Feed(scanner.Text())
	}
	return p.Stats()
}

type statsParser struct {
	inRecap bool
	stats   Stats
}

func newStatsParser() *statsParser {
	return &statsParser{}
}

// Feed consumes one output line
func (p *statsParser) Feed(line string) {
	if strings.Contains(line, "PLAY RECAP") {
		p.inRecap = true
		return
	}
	if !p.inRecap {
		return
	}

	// hostname : ok=2 changed=1 unreachable=0 failed=0 skipped=0 rescued=0 ignored=0
	matches := recapCounterRe.FindAllStringSubmatch(line, -1)
	if len(matches) == 0 {
		return
	}
	p.stats.Hosts++

	for _, m := range matches {
		val, err := strconv.Atoi(m[2])
		if err != nil {
			continue
		}
		switch m[1] {
		case "ok":
			p.stats.Ok += val
		case "changed":
			p.stats.Changed += val
		case "unreachable":
			p.stats.Unreachable += val
		case "failed":
			p.stats.Failures += val
		case "skipped":
			p.stats.Skipped += val
		case "rescued":
			p.stats.Rescued += val
		case "ignored":
			p.stats.Ignored += val
		}
	}
}

func (p *statsParser) Stats() *Stats {
	s := p.stats
	return &s
}
