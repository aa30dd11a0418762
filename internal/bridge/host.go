// Package bridge defines the contracts between the Telegram channel and the
// game server hosting the bridge: the Host capability interface, the
// Renderer collaborator for pre-rendered page images, and the Forwarder
// module that turns game events into outbound Telegram messages.
package bridge

import "context"

// Service names under which collaborators are published on the AppContext.
const (
	// HostService must be registered by the embedding process before
	// modules start.
	HostService = "bridge.host"

	// SenderService is registered by the Telegram channel module.
	SenderService = "telegram.sender"

	// RendererService is registered by the forwarder when a pages
	// directory is configured.
	RendererService = "bridge.renderer"

	// ForwarderService is registered by the forwarder module; hosts call
	// it to mirror game events.
	ForwarderService = "bridge.forwarder"

	// BindingsService is registered by the store.bindings module.
	BindingsService = "store.bindings"
)

// DefaultSilentPermission marks players that should be invisible to the
// bridge: excluded from the online roster and from join/leave notices.
const DefaultSilentPermission = "craftbridge.silentjoinleave"

// Host is the narrow capability interface the bridge needs from the game
// server. Implementations are expected to answer quickly from local state;
// the update dispatcher calls them synchronously.
type Host interface {
	// OnlinePlayerNames returns the names of currently connected players,
	// excluding those holding the given permission.
	OnlinePlayerNames(excludePermission string) []string

	// WorldTime returns the current world time tick in [0,24000) and true,
	// or false when no world is loaded.
	WorldTime() (int64, bool)

	// ForwardToGameChat displays a Telegram message in the game chat.
	// sender and chatTitle may be empty; formatting is up to the host.
	ForwardToGameChat(text, sender, chatTitle string)
}

// Sender is the outbound surface of the Telegram channel, as seen by the
// game side. Every call fans out to all configured chats.
type Sender interface {
	// SendText sends an HTML-formatted text message.
	SendText(ctx context.Context, text string) error

	// SendPhoto sends a PNG image with a plain-text caption.
	SendPhoto(ctx context.Context, image []byte, caption string) error

	// SendPaged sends page 1 of a paged resource with navigation buttons.
	SendPaged(ctx context.Context, contentID, caption string) error
}

// NameBindings persists associations between Telegram usernames and
// in-game player names.
type NameBindings interface {
	// Bind associates the Telegram username with a game name, replacing
	// any previous association.
	Bind(ctx context.Context, telegramUser, gameName string) error

	// GameName returns the bound game name for a Telegram username,
	// or false when no binding exists.
	GameName(ctx context.Context, telegramUser string) (string, bool, error)
}
