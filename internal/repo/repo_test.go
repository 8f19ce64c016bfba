package repo

import "testing"

func TestNormalizeDSN(t *testing.T) {
	cases := []struct {
		in, want string
	}{
		{"postgres://u:p@db/aqua", "postgres://u:p@db/aqua?sslmode=require"},
		{"postgresql://u@db/aqua?connect_timeout=5", "postgresql://u@db/aqua?connect_timeout=5&sslmode=require"},
		{"user=postgres dbname=aqua", "user=postgres dbname=aqua sslmode=require"},
		{"postgres://db/aqua?sslmode=disable", "postgres://db/aqua?sslmode=disable"},
		{"  host=db sslmode=verify-full ", "host=db sslmode=verify-full"},
	}
	for _, c := range cases {
		if got := NormalizeDSN(c.in); got != c.want {
			t.Fatalf("NormalizeDSN(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestPostgresCatalogRepository_ImplementsRepository(t *testing.T) {
	var _ Repository = (*PostgresCatalogRepository)(nil)
}
