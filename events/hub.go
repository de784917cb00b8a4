package events

import (
	"encoding/json"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gofiber/contrib/websocket"
	"github.com/rotisserie/eris"
	"github.com/rs/zerolog"

	"github.com/meshforge/scenecore/codec"
)

const (
	shutdownPollInterval = 200 * time.Millisecond
	writeDeadline        = 5 * time.Second
)

// wireEvent is the envelope relayed to websocket consumers.
type wireEvent struct {
	Kind Kind            `json:"kind"`
	Data json.RawMessage `json:"data"`
}

// connRequest pairs a websocket connection with a channel the hub loop uses
// to signal that the (un)registration took effect.
type connRequest struct {
	conn *websocket.Conn
	done chan struct{}
}

// EventHub relays store events to websocket consumers (editor frontends,
// debug tooling). Events are queued as they are emitted and pushed out on
// Flush, so consumers observe whole mutations rather than torn intermediate
// states. The hub runs on its own goroutine and only ever sees encoded
// copies; it never reads the store.
type EventHub struct {
	conns       map[*websocket.Conn]struct{}
	broadcast   chan []byte
	flush       chan struct{}
	register    chan connRequest
	unregister  chan connRequest
	queueLength chan chan int
	connCount   chan chan int
	shutdown    chan struct{}
	queue       [][]byte
	running     atomic.Bool
	log         zerolog.Logger
}

func NewEventHub(logger zerolog.Logger) *EventHub {
	eh := &EventHub{
		conns:       map[*websocket.Conn]struct{}{},
		broadcast:   make(chan []byte),
		flush:       make(chan struct{}),
		register:    make(chan connRequest),
		unregister:  make(chan connRequest),
		queueLength: make(chan chan int),
		connCount:   make(chan chan int),
		shutdown:    make(chan struct{}),
		log:         logger,
	}
	go eh.run()
	return eh
}

// EmitEvent encodes ev and queues it for the next Flush.
func (eh *EventHub) EmitEvent(ev Event) error {
	data, err := codec.Encode(ev)
	if err != nil {
		return err
	}
	envelope, err := codec.Encode(wireEvent{Kind: ev.Kind(), Data: data})
	if err != nil {
		return err
	}
	eh.broadcast <- envelope
	return nil
}

// FlushEvents pushes every queued event to every registered connection. The
// embedding editor calls this once per frame, after its update pass.
func (eh *EventHub) FlushEvents() {
	eh.flush <- struct{}{}
}

func (eh *EventHub) RegisterConnection(ws *websocket.Conn) {
	req := connRequest{conn: ws, done: make(chan struct{})}
	eh.register <- req
	<-req.done
}

func (eh *EventHub) UnregisterConnection(ws *websocket.Conn) {
	req := connRequest{conn: ws, done: make(chan struct{})}
	eh.unregister <- req
	<-req.done
}

// EventQueueLength reports how many events are waiting for the next flush.
func (eh *EventHub) EventQueueLength() int {
	ch := make(chan int)
	eh.queueLength <- ch
	return <-ch
}

// ConnectionCount reports the number of registered websocket connections.
func (eh *EventHub) ConnectionCount() int {
	ch := make(chan int)
	eh.connCount <- ch
	return <-ch
}

// Shutdown closes every connection and stops the hub loop, blocking until
// the loop has exited.
func (eh *EventHub) Shutdown() {
	eh.shutdown <- struct{}{}
	for eh.running.Load() {
		time.Sleep(shutdownPollInterval)
	}
}

func (eh *EventHub) run() {
	if eh.running.Load() {
		return
	}
	eh.running.Store(true)

	drop := func(conn *websocket.Conn) {
		if _, ok := eh.conns[conn]; !ok {
			return
		}
		delete(eh.conns, conn)
		if err := conn.Close(); err != nil {
			eh.log.Error().Err(eris.Wrap(err, "")).Msg("failed to close websocket connection")
		}
	}

Loop:
	for {
		select {
		case req := <-eh.register:
			eh.conns[req.conn] = struct{}{}
			close(req.done)
		case req := <-eh.unregister:
			drop(req.conn)
			close(req.done)
		case envelope := <-eh.broadcast:
			eh.queue = append(eh.queue, envelope)
		case ch := <-eh.queueLength:
			ch <- len(eh.queue)
		case ch := <-eh.connCount:
			ch <- len(eh.conns)
		case <-eh.flush:
			eh.flushAll()
		case <-eh.shutdown:
			// Senders racing shutdown must not block once the loop exits:
			// keep answering every channel, discarding the work.
			go func() {
				for {
					select {
					case <-eh.shutdown:
					case <-eh.broadcast:
					case <-eh.flush:
					case req := <-eh.register:
						close(req.done)
					case req := <-eh.unregister:
						close(req.done)
					case ch := <-eh.queueLength:
						ch <- 0
					case ch := <-eh.connCount:
						ch <- 0
					}
				}
			}()
			for conn := range eh.conns {
				drop(conn)
			}
			break Loop
		}
	}
	eh.running.Store(false)
}

func (eh *EventHub) flushAll() {
	var wg sync.WaitGroup
	for conn := range eh.conns {
		wg.Add(1)
		conn := conn
		go func() {
			defer wg.Done()
			for _, envelope := range eh.queue {
				if err := conn.SetWriteDeadline(time.Now().Add(writeDeadline)); err != nil {
					eh.dropAsync(conn, err)
					return
				}
				if err := conn.WriteMessage(websocket.TextMessage, envelope); err != nil {
					eh.dropAsync(conn, err)
					return
				}
			}
		}()
	}
	wg.Wait()
	eh.queue = eh.queue[:0]
}

// dropAsync unregisters a connection from outside the hub loop. It must not
// call drop directly: the loop is busy waiting on the flush waitgroup.
func (eh *EventHub) dropAsync(conn *websocket.Conn, cause error) {
	eh.log.Error().Err(eris.Wrap(cause, "")).Msg("dropping websocket connection")
	go func() {
		eh.UnregisterConnection(conn)
	}()
}

// NewWebSocketEventHandler returns the fiber websocket handler that keeps a
// connection registered for the relay until the peer hangs up.
func (eh *EventHub) NewWebSocketEventHandler() func(conn *websocket.Conn) {
	return func(conn *websocket.Conn) {
		eh.RegisterConnection(conn)
		// Consume control/client frames until the connection dies; the relay
		// itself writes from the hub loop.
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				break
			}
		}
		eh.UnregisterConnection(conn)
	}
}
