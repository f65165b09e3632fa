package sqlstore

import "testing"

func TestDialect_Rebind(t *testing.T) {
	tests := []struct {
		name    string
		dialect Dialect
		query   string
		want    string
	}{
		{
			name:    "sqlite keeps question marks",
			dialect: SQLite,
			query:   "SELECT 1 FROM t WHERE a = ? AND b = ?",
			want:    "SELECT 1 FROM t WHERE a = ? AND b = ?",
		},
		{
			name:    "postgres numbers placeholders",
			dialect: Postgres,
			query:   "UPDATE t SET a = ? WHERE b = ? AND c IN (?, ?)",
			want:    "UPDATE t SET a = $1 WHERE b = $2 AND c IN ($3, $4)",
		},
		{
			name:    "no placeholders",
			dialect: Postgres,
			query:   "SELECT 1",
			want:    "SELECT 1",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.dialect.Rebind(tt.query); got != tt.want {
				t.Errorf("Rebind() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestNullInt(t *testing.T) {
	if nullInt(0) != nil {
		t.Error("nullInt(0) should be nil")
	}
	if nullInt(42) != int64(42) {
		t.Error("nullInt(42) should be 42")
	}
}
