package realtime

// Fragment is one short fact line passed to the prompt
type Fragment = string

// Status classifies a provider lookup
type Status int

const (
	// StatusOK means the provider produced real data
	StatusOK Status = iota
	// StatusUnavailable means the provider is not configured or had nothing
	StatusUnavailable
	// StatusTransientError means a network failure or timeout
	StatusTransientError
)

func (s Status) String() string {
	switch s {
	case StatusOK:
		return "ok"
	case StatusUnavailable:
		return "unavailable"
	case StatusTransientError:
		return "transient_error"
	default:
		return "unknown"
	}
}

// Result is what every provider returns. Degraded results still carry a
// placeholder fragment so the prompt can mention the gap.
type Result struct {
	Provider  string
	Status    Status
	Fragments []Fragment
}

// OK reports whether the lookup produced real data
func (r Result) OK() bool {
	return r.Status == StatusOK
}

// Take returns at most n fragments
func (r Result) Take(n int) []Fragment {
	if n <= 0 {
		return nil
	}
	if len(r.Fragments) <= n {
		return r.Fragments
	}
	return r.Fragments[:n]
}

// Placeholder fragments for degraded weather lookups
const (
	WeatherNoKey     = "날씨 API 키가 설정되지 않았습니다."
	WeatherNoData    = "날씨 정보를 가져올 수 없습니다."
	WeatherLookupErr = "날씨 정보 조회 중 오류 발생"
)
