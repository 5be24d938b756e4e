// Courier is a chat completion proxy.
//
// It accepts {"prompt": ...} on POST /api/chat, forwards the prompt to a
// hosted completion application and answers {"result": ...} with the
// extracted reply text. The completion credentials stay on the server.
//
// Usage:
//
//	# Start the proxy (APP_ID and API_KEY from the environment)
//	courier run
//
//	# Start with a configuration file
//	courier run --config /etc/courier/config.yaml
//
//	# Check a configuration file, re-checking whenever it changes
//	courier validate --config config.yaml --watch
//
//	# Ask a running proxy one question
//	courier ask "berapa total penjualan hari ini?"
//
//	# Interactive chat against a running proxy
//	courier chat --url http://localhost:8080
package main

func main() {
	Execute()
}
