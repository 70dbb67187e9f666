package pgstore

import "context"

// Truncate empties both tables between tests.
func (s *Store) Truncate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, "TRUNCATE classifications, file_records RESTART IDENTITY")
	return err
}
