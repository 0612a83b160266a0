package model

import "fmt"

// Times is the wire form of an expectation's match budget
type Times struct {
	RemainingTimes int  `json:"remainingTimes"`
	Unlimited      bool `json:"unlimited"`
}

func Once() *Times {
	return Exactly(1)
}

func Exactly(n int) *Times {
	return &Times{RemainingTimes: n}
}

func Unlimited() *Times {
	return &Times{Unlimited: true}
}

func (t *Times) String() string {
	if t == nil || t.Unlimited {
		return "unlimited"
	}
	return fmt.Sprintf("exactly %d", t.RemainingTimes)
}

// VerificationTimes is the count predicate of a verification
type VerificationTimes struct {
	Count int  `json:"count"`
	Exact bool `json:"exact"`
}

func VerifyExactly(n int) *VerificationTimes {
	return &VerificationTimes{Count: n, Exact: true}
}

func VerifyAtLeast(n int) *VerificationTimes {
	return &VerificationTimes{Count: n}
}

// Satisfied reports whether the observed count meets the predicate
func (v *VerificationTimes) Satisfied(actual int) bool {
	if v.Exact {
		return actual == v.Count
	}
	return actual >= v.Count
}

func (v *VerificationTimes) String() string {
	if v.Exact {
		return fmt.Sprintf("exactly %d times", v.Count)
	}
	return fmt.Sprintf("at least %d times", v.Count)
}
