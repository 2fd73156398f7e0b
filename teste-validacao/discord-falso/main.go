// discord-falso imita a parte da API REST usada pelo gateway para validar
// retentativas e o registro de comandos localmente.
//
//	FAIL_FIRST=2 FAIL_STATUS=503 RETRY_AFTER=0.5 go run ./teste-validacao/discord-falso
//	DISCORD_API_BASE_URL=http://localhost:8082/api/v10 go run ./cmd/gateway
package main

import (
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"strconv"
	"sync"

	"github.com/bwmarrin/discordgo"
	"github.com/gorilla/mux"
)

type fakeAPI struct {
	mu        sync.Mutex
	commands  map[string][]*discordgo.ApplicationCommand
	calls     int
	failFirst int
	failCode  int
	retryHint string
	verifyKey string
}

func (f *fakeAPI) routes() http.Handler {
	r := mux.NewRouter()
	api := r.PathPrefix("/api/v10").Subrouter()
	api.Use(f.injectFailures)
	api.HandleFunc("/applications/{appID}/commands", f.listCommands).Methods(http.MethodGet)
	api.HandleFunc("/applications/{appID}/commands", f.putCommands).Methods(http.MethodPut)
	api.HandleFunc("/oauth2/applications/@me", f.currentApplication).Methods(http.MethodGet)
	return r
}

// injectFailures responde failCode nas primeiras failFirst chamadas.
func (f *fakeAPI) injectFailures(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		f.calls++
		n := f.calls
		f.mu.Unlock()

		fmt.Printf("Log: %s %s (chamada %d)\n", r.Method, r.URL.Path, n)
		if n <= f.failFirst {
			if f.retryHint != "" {
				w.Header().Set("Retry-After", f.retryHint)
			}
			writeJSON(w, f.failCode, map[string]any{"message": http.StatusText(f.failCode), "code": 0})
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (f *fakeAPI) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func (f *fakeAPI) listCommands(w http.ResponseWriter, r *http.Request) {
	appID := mux.Vars(r)["appID"]
	f.mu.Lock()
	cmds := f.commands[appID]
	f.mu.Unlock()
	if cmds == nil {
		cmds = []*discordgo.ApplicationCommand{}
	}
	writeJSON(w, http.StatusOK, cmds)
}

func (f *fakeAPI) putCommands(w http.ResponseWriter, r *http.Request) {
	if r.Header.Get("Authorization") == "" {
		writeJSON(w, http.StatusUnauthorized, map[string]any{"message": "401: Unauthorized", "code": 0})
		return
	}
	var cmds []*discordgo.ApplicationCommand
	if err := json.NewDecoder(r.Body).Decode(&cmds); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{"message": "Invalid Form Body", "code": 50035})
		return
	}

	appID := mux.Vars(r)["appID"]
	for i, c := range cmds {
		c.ID = strconv.Itoa(i + 1)
		c.ApplicationID = appID
	}
	f.mu.Lock()
	f.commands[appID] = cmds
	f.mu.Unlock()

	writeJSON(w, http.StatusOK, cmds)
}

func (f *fakeAPI) currentApplication(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"id": "0", "name": "discord-falso", "verify_key": f.verifyKey})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func main() {
	f := &fakeAPI{
		commands:  map[string][]*discordgo.ApplicationCommand{},
		failFirst: getenvInt("FAIL_FIRST", 0),
		failCode:  getenvInt("FAIL_STATUS", http.StatusServiceUnavailable),
		retryHint: os.Getenv("RETRY_AFTER"),
		verifyKey: os.Getenv("PUBLIC_KEY"),
	}

	addr := ":8082"
	if v := os.Getenv("LISTEN_ADDR"); v != "" {
		addr = v
	}

	fmt.Printf("Discord falso rodando em http://localhost%s/api/v10 (falhas iniciais=%d status=%d)\n", addr, f.failFirst, f.failCode)
	if err := http.ListenAndServe(addr, f.routes()); err != nil {
		fmt.Printf("Erro ao subir o servidor: %s\n", err)
	}
}

func getenvInt(k string, def int) int {
	v, err := strconv.Atoi(os.Getenv(k))
	if err != nil {
		return def
	}
	return v
}
