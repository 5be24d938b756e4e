/*
Package client is a Go client for the courier chat proxy.

Client.Complete posts one prompt to /api/chat and returns the result text.
Session layers the chat page's conversation behavior on top of it:

	c, err := client.New("http://localhost:8080")
	if err != nil {
		return err
	}
	s := client.NewSession(c, logger)

	reply, ok := s.Send(ctx, "berapa total penjualan minggu ini?")
	if ok {
		fmt.Println(reply.Content)
	}

	// Quick action: today's report summary.
	s.SendReport(ctx, time.Now())

Blank prompts are ignored. An empty result is shown as "No response." and a
failure to reach the proxy as "Error contacting API.". The proxy keeps no
history, so each prompt is answered on its own; the transcript exists only
on the client side.
*/
package client
