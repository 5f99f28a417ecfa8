// Package client is a Go client for the filekeep HTTP API.
//
// Uploads go through the full flow: the server hands out a signed upload URL,
// the client sends the bytes straight to the storage provider and then records
// the file's metadata.
//
// # Basic Usage
//
//	c, err := client.New(&client.Config{Endpoint: "http://localhost:8080"})
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	result, err := c.Upload(ctx, client.UploadOptions{LocalPath: "./report.pdf"})
//	if err != nil {
//		log.Fatal(err)
//	}
//	fmt.Println(result.Record.ID)
//
// # Profile Configuration
//
// Profiles are stored in ~/.filekeep/config.yaml:
//
//	configFile, err := client.LoadConfigFile(path)
//	profile, err := configFile.GetProfile("production")
//	c, err := client.New(client.ConfigFromProfile(profile))
//
// Server errors are returned as *APIError and can be matched with errors.Is
// against ErrNotFound, ErrBadRequest, ErrForbidden and ErrConflict.
package client
