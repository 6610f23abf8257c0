package commands

const (
	GroupGeneral = "General"
	GroupMusic   = "Music"
)

// Deps are the collaborators the built-in commands call into.
type Deps struct {
	Memes     MemeSource
	Voice     Voice
	AdminRole string
}

// RegisterDefaults registers the General and Music command groups.
func RegisterDefaults(r *Router, deps Deps) {
	r.Register(
		PingCommand(),
		MemeCommand(deps.Memes),
		GifCommand(deps.Memes),
		DetailsCommand(deps.AdminRole),
		JoinCommand(deps.Voice),
		LeaveCommand(deps.Voice),
		PlayCommand(deps.Voice),
		MuteCommand(deps.Voice),
		UnmuteCommand(deps.Voice),
	)
}
