package chat

import (
	"context"

	"trivia/game"
)

// GameService is the engine surface the transport drives. *game.Manager
// satisfies it.
type GameService interface {
	Start(ctx context.Context, channel string, opts game.StartOptions) error
	Stop(channel string) error
	Answer(channel, nick, guess string)
	Hint(channel string)
	Question(channel string)
	Skip(channel string)
	Report(ctx context.Context, channel string)
	Stats(channel, player string, topN int)
}
