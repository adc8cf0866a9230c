package handlers

import "net/http"

// HandleWebSocket hands the verified request over to the hub. The session
// check already ran in UserVerifier; the hub reads the user identity from the
// userId query parameter.
func HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	chatHub.HandleClient(w, r)
}
