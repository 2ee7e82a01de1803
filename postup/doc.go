// Package postup provides a client for the PostUp email marketing REST API.
//
// Every call flows through a single pipeline: absent body fields are
// stripped, the request is sent with Basic authentication, the response is
// checked for well-formed JSON and then normalized into Go values.
//
// # Architecture
//
//   - Client: credentials, transport and the request pipeline
//   - Services: one per resource group (Brands, Lists, Recipients, ...)
//   - Validator: allow-list, type, date and presence checks run before a call
//   - Formatter: demographics conversion and response normalization
//   - Errors: ValidationError, ConnectionError and APIError
//
// # Usage
//
//	logger := zerolog.New(os.Stderr)
//	client, err := postup.NewClient("user", "secret", logger,
//		postup.WithTimeout(10*time.Second),
//	)
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	recipient, err := client.Recipients.Create(ctx, postup.Recipient{
//		Address:    "jane@example.com",
//		ExternalID: "jane-1",
//		Channel:    postup.ChannelEmail,
//		Demographics: map[string]string{"city": "Oslo"},
//	})
//
// Endpoints without a typed wrapper are reachable through Client.Request,
// which returns the normalized response tree.
//
// # Error Handling
//
// Validation failures never reach the network:
//
//	if postup.IsValidationError(err) {
//		// bad input
//	}
//
// Transport failures return a *ConnectionError, and responses with a status
// of 400 or above return an *APIError unless the client was built with
// WithStatusPassthrough.
package postup
