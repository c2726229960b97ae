package httpx

import "testing"

func TestParseEngine(t *testing.T) {
	cases := map[string]Engine{
		"":         EngineNetHTTP,
		"nethttp":  EngineNetHTTP,
		"net/http": EngineNetHTTP,
		"FastHTTP": EngineFastHTTP,
		" fasthttp ": EngineFastHTTP,
	}
	for in, want := range cases {
		got, err := ParseEngine(in)
		if err != nil {
			t.Fatalf("%q: %v", in, err)
		}
		if got != want {
			t.Errorf("%q: got %v, want %v", in, got, want)
		}
	}
	if _, err := ParseEngine("spdy"); err == nil {
		t.Error("unknown engine should be rejected")
	}
}

func TestNewServerDefaultsToNetHTTP(t *testing.T) {
	s := NewServer(Engine("bogus"), nil)
	if s.Engine() != EngineNetHTTP {
		t.Errorf("engine = %v, want nethttp", s.Engine())
	}
	if NewServer(EngineFastHTTP, nil).Engine() != EngineFastHTTP {
		t.Error("fasthttp engine not selected")
	}
}
