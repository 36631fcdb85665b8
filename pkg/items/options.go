package items

// Option configures a Client during construction in New.
type Option func(*Client)

// WithLogger attaches a logger that receives one debug record per request.
func WithLogger(log Logger) Option {
	return func(c *Client) {
		if log != nil {
			c.log = log
		}
	}
}
