package main

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"os"
	"strings"
	"sync"
	"time"

	"mangrove-watch/pkg/middleware"
	"mangrove-watch/pkg/queue"

	amqp "github.com/rabbitmq/amqp091-go"
)

// NotificationEvent mirrors the report service's ReportEvent payload.
type NotificationEvent struct {
	Type       string    `json:"type"` // new_report, status_update
	ReportID   string    `json:"report_id"`
	Title      string    `json:"title"`
	Status     string    `json:"status,omitempty"`
	Severity   string    `json:"severity,omitempty"`
	ReporterID string    `json:"user_id"`
	CreatedAt  time.Time `json:"created_at"`
}

type Client struct {
	UserID string
	Role   string
	Send   chan NotificationEvent
}

var (
	clients    = make(map[*Client]bool)
	broadcast  = make(chan NotificationEvent, 100)
	register   = make(chan *Client)
	unregister = make(chan *Client)
	mu         sync.RWMutex
)

func main() {
	middleware.SetServiceName("notification-service")

	conn, ch, err := queue.ConnectRabbitMQ(queue.URIFromEnv())
	if err != nil {
		log.Fatalf("[ERROR] Failed to connect to RabbitMQ: %v", err)
	}
	defer conn.Close()
	defer ch.Close()
	log.Println("[OK] Connected to RabbitMQ")

	q, err := queue.DeclareAndBind(ch, queue.ReportsExchange, "notifications", "report.created", "report.updated")
	if err != nil {
		log.Fatalf("[ERROR] Failed to bind notifications queue: %v", err)
	}
	log.Println("[INFO] Listening to notifications queue")

	middleware.RegisterMetrics()

	go consumeMessages(ch, q.Name)
	go handleClients()

	apiMux := http.NewServeMux()
	apiMux.HandleFunc("/health", healthHandler)
	apiMux.Handle("/metrics", middleware.GetMetricsHandler())

	apiHandler := middleware.TraceMiddleware(
		middleware.MetricsMiddleware(
			middleware.LoggerMiddleware(apiMux),
		),
	)

	rootMux := http.NewServeMux()
	rootMux.Handle("/notifications/subscribe", middleware.TraceMiddleware(http.HandlerFunc(subscribeHandler)))
	rootMux.Handle("/", apiHandler)

	port := os.Getenv("NOTIFICATION_PORT")
	if port == "" {
		port = "8084"
	}

	log.Printf("[INFO] Notification Service running on port :%s", port)
	if err := http.ListenAndServe(":"+port, rootMux); err != nil {
		log.Fatalf("[ERROR] Server failed: %v", err)
	}
}

func consumeMessages(ch *amqp.Channel, queueName string) {
	msgs, err := queue.ConsumeMessages(ch, queueName)
	if err != nil {
		log.Fatalf("[ERROR] Failed to register consumer: %v", err)
	}

	for d := range msgs {
		var event NotificationEvent
		if err := json.Unmarshal(d.Body, &event); err != nil {
			log.Printf("[WARN] Failed to parse notification: %v", err)
			continue
		}

		log.Printf("[OK] Notification received - Report: %s, Type: %s", event.ReportID, event.Type)
		broadcast <- event
	}
}

// handleClients owns the subscriber set. status_update events go to the
// reporting user only; new_report events go to authority and admin
// dashboards.
func handleClients() {
	for {
		select {
		case client := <-register:
			mu.Lock()
			clients[client] = true
			total := len(clients)
			mu.Unlock()
			log.Printf("[INFO] Client registered - UserID: %s (Total clients: %d)", client.UserID, total)

		case client := <-unregister:
			mu.Lock()
			if _, ok := clients[client]; ok {
				delete(clients, client)
				close(client.Send)
			}
			total := len(clients)
			mu.Unlock()
			log.Printf("[INFO] Client unregistered - UserID: %s (Total clients: %d)", client.UserID, total)

		case event := <-broadcast:
			mu.RLock()
			for client := range clients {
				if !shouldDeliver(event, client) {
					continue
				}
				select {
				case client.Send <- event:
				default:
					// client's send channel is full, skip
				}
			}
			mu.RUnlock()
		}
	}
}

func shouldDeliver(event NotificationEvent, client *Client) bool {
	switch event.Type {
	case "status_update":
		return event.ReporterID != "" && client.UserID == event.ReporterID
	case "new_report":
		return client.Role == "authority" || client.Role == "admin"
	}
	return false
}

// subscribeHandler is the SSE endpoint clients hold open for live updates.
func subscribeHandler(w http.ResponseWriter, r *http.Request) {
	tokenString := r.URL.Query().Get("token")
	if tokenString == "" {
		authHeader := r.Header.Get("Authorization")
		if strings.HasPrefix(authHeader, "Bearer ") {
			tokenString = strings.TrimPrefix(authHeader, "Bearer ")
		}
	}

	if tokenString == "" {
		http.Error(w, "Unauthorized: Missing token", http.StatusUnauthorized)
		return
	}

	claims, err := middleware.ParseToken(tokenString)
	if err != nil {
		log.Printf("[WARN] Invalid token attempt: %v", err)
		http.Error(w, "Unauthorized: Invalid token", http.StatusUnauthorized)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("Access-Control-Allow-Origin", "*")

	client := &Client{
		UserID: claims.UserID,
		Role:   claims.Role,
		Send:   make(chan NotificationEvent, 10),
	}

	register <- client
	defer func() {
		unregister <- client
	}()

	fmt.Fprintf(w, "data: %s\n\n", `{"type":"connected","message":"Connection established"}`)
	w.(http.Flusher).Flush()

	for event := range client.Send {
		data, _ := json.Marshal(event)
		fmt.Fprintf(w, "data: %s\n\n", string(data))
		w.(http.Flusher).Flush()
	}
}

func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	mu.RLock()
	connectedClients := len(clients)
	mu.RUnlock()

	json.NewEncoder(w).Encode(map[string]interface{}{
		"status":            "UP",
		"service":           "notification-service",
		"connected_clients": connectedClients,
	})
}
