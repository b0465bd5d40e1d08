package augment

import (
	"fmt"
	"sort"
	"strings"
)

// Policy bundles the SpecAugment strength parameters.
//
//	Policy | W  | F  | m_F |  T  |  p  | m_T
//	none   |  0 |  0 |  -  |  0  |  -  |  -
//	LB     | 80 | 27 |  1  | 100 | 1.0 | 1
//	LD     | 80 | 27 |  2  | 100 | 1.0 | 2
//	SM     | 40 | 15 |  2  |  70 | 0.2 | 2
//	SS     | 40 | 27 |  2  |  70 | 0.2 | 2
//
// LB/LD are the LibriSpeech basic/double policies, SM/SS Switchboard mild/strong.
type Policy struct {
	Name string `json:"name" yaml:"name"`

	// W bounds the time warp distance in frames
	W int `json:"w" yaml:"w"`

	// F bounds the frequency mask width; MF is the number of frequency masks
	F  int `json:"f" yaml:"f"`
	MF int `json:"m_f" yaml:"m_f"`

	// T bounds the time mask width; MT is the number of time masks
	T  int `json:"t" yaml:"t"`
	MT int `json:"m_t" yaml:"m_t"`

	// P caps the time mask width at a fraction of the utterance length.
	// Only honoured when the time mask cap is enabled.
	P float64 `json:"p" yaml:"p"`
}

// Policy names shipped in the default table
const (
	PolicyNone = "none"
	PolicyLB   = "LB"
	PolicyLD   = "LD"
	PolicySM   = "SM"
	PolicySS   = "SS"
)

var builtinPolicies = []Policy{
	{Name: PolicyNone},
	{Name: PolicyLB, W: 80, F: 27, MF: 1, T: 100, P: 1.0, MT: 1},
	{Name: PolicyLD, W: 80, F: 27, MF: 2, T: 100, P: 1.0, MT: 2},
	{Name: PolicySM, W: 40, F: 15, MF: 2, T: 70, P: 0.2, MT: 2},
	{Name: PolicySS, W: 40, F: 27, MF: 2, T: 70, P: 0.2, MT: 2},
}

// Validate checks that all parameters are usable
func (p Policy) Validate() error {
	if strings.TrimSpace(p.Name) == "" {
		return invalidPolicy(p.Name, "name is required")
	}
	for _, v := range []struct {
		name  string
		value int
	}{{"W", p.W}, {"F", p.F}, {"m_F", p.MF}, {"T", p.T}, {"m_T", p.MT}} {
		if v.value < 0 {
			return invalidPolicy(p.Name, fmt.Sprintf("%s must not be negative, got %d", v.name, v.value))
		}
	}
	if p.P < 0 || p.P > 1 {
		return invalidPolicy(p.Name, fmt.Sprintf("p must be within [0, 1], got %g", p.P))
	}
	return nil
}

func (p Policy) String() string {
	return fmt.Sprintf("%s(W=%d F=%d m_F=%d T=%d p=%g m_T=%d)", p.Name, p.W, p.F, p.MF, p.T, p.P, p.MT)
}

// PolicyTable resolves policy names case-insensitively
type PolicyTable map[string]Policy

func policyKey(name string) string {
	return strings.ToUpper(strings.TrimSpace(name))
}

// DefaultPolicies returns a fresh table holding the built-in policies
func DefaultPolicies() PolicyTable {
	table := make(PolicyTable, len(builtinPolicies))
	for _, p := range builtinPolicies {
		table[policyKey(p.Name)] = p
	}
	return table
}

// Register adds or replaces a policy after validating it
func (pt PolicyTable) Register(p Policy) error {
	if err := p.Validate(); err != nil {
		return err
	}
	pt[policyKey(p.Name)] = p
	return nil
}

// Lookup resolves name. Unknown names yield a *ConfigurationError
// wrapping ErrUnknownPolicy.
func (pt PolicyTable) Lookup(name string) (Policy, error) {
	p, ok := pt[policyKey(name)]
	if !ok {
		return Policy{}, unknownPolicy(name)
	}
	return p, nil
}

// Names lists the policy names in sorted order
func (pt PolicyTable) Names() []string {
	names := make([]string, 0, len(pt))
	for _, p := range pt {
		names = append(names, p.Name)
	}
	sort.Strings(names)
	return names
}

// LookupPolicy resolves name against the built-in policies
func LookupPolicy(name string) (Policy, error) {
	return DefaultPolicies().Lookup(name)
}
