package domain

import "testing"

func TestIndexStateCanIngest(t *testing.T) {
	tests := []struct {
		status IndexStatus
		want   bool
	}{
		{IndexStatusEmpty, true},
		{IndexStatusReady, true},
		{IndexStatusIngesting, false},
		{IndexStatusFailed, false},
	}

	for _, tt := range tests {
		t.Run(string(tt.status), func(t *testing.T) {
			s := IndexState{Status: tt.status}
			if got := s.CanIngest(); got != tt.want {
				t.Errorf("CanIngest() in %s = %v, want %v", tt.status, got, tt.want)
			}
		})
	}
}

func TestIndexStateQueryable(t *testing.T) {
	tests := []struct {
		status IndexStatus
		want   bool
	}{
		{IndexStatusEmpty, true},
		{IndexStatusReady, true},
		{IndexStatusIngesting, true},
		{IndexStatusFailed, false},
	}

	for _, tt := range tests {
		t.Run(string(tt.status), func(t *testing.T) {
			s := IndexState{Status: tt.status}
			if got := s.Queryable(); got != tt.want {
				t.Errorf("Queryable() in %s = %v, want %v", tt.status, got, tt.want)
			}
		})
	}
}
