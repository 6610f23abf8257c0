package commands

// PingCommand replies with Pong!
func PingCommand() *Command {
	return &Command{
		Name:        "ping",
		Group:       GroupGeneral,
		Description: "Reply With Pong!",
		Run: func(c *Context) error {
			c.Typing()
			return c.Reply("Pong!")
		},
	}
}
