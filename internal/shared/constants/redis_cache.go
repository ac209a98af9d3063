package constants

// Redis key layout for the application.
// Pattern: concertly:{module}:{operation}:{identifier}

const (
	KEY_CONCERT_LIST   = "concertly:concerts:list"
	KEY_CONCERT_DETAIL = "concertly:concerts:detail:" // + concert id

	PATTERN_INVALIDATE_CONCERTS = "concertly:concerts:*"

	// Channel for realtime availability broadcasts (Redis pub/sub).
	CHANNEL_AVAILABILITY = "concertly:availability"
)

// BuildConcertDetailKey builds the cache key for a single concert.
func BuildConcertDetailKey(id string) string {
	return KEY_CONCERT_DETAIL + id
}
