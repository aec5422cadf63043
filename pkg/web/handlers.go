package web

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"

	"github.com/terrapen/go-terrapen/pkg/hub"
	"github.com/terrapen/go-terrapen/pkg/motion"
	"github.com/terrapen/go-terrapen/pkg/protocol"
	"github.com/terrapen/go-terrapen/pkg/sim"
)

// handleStatus returns the current engine snapshot without the trail.
func (s *Server) handleStatus(c *fiber.Ctx) error {
	s.mu.Lock()
	state := s.stateData(time.Now())
	s.mu.Unlock()
	return c.JSON(state)
}

// handleTrail returns every recorded pen-down point.
func (s *Server) handleTrail(c *fiber.Ctx) error {
	s.mu.Lock()
	trail := s.seq.Simulator().Trail()
	s.mu.Unlock()
	return c.JSON(fiber.Map{"trail": trail})
}

// handleCommand accepts a motion command and starts it. Malformed
// commands get 400; commands arriving while a sequence runs get 409.
func (s *Server) handleCommand(c *fiber.Ctx) error {
	var cmd motion.Command
	if err := c.BodyParser(&cmd); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid command body: " + err.Error(),
		})
	}
	if err := cmd.Validate(); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	s.mu.Lock()
	jobID, err := s.seq.Do(cmd, time.Now())
	s.mu.Unlock()

	if errors.Is(err, sim.ErrBusy) {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{
			"error": "a sequence is already executing",
		})
	}
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	return c.JSON(fiber.Map{"job_id": jobID})
}

// handleReset stops all motion and returns the robot to the origin.
func (s *Server) handleReset(c *fiber.Ctx) error {
	s.mu.Lock()
	s.seq.Reset()
	s.mu.Unlock()
	return c.JSON(fiber.Map{"ok": true})
}

// handleStateWS subscribes a websocket client to state broadcasts.
// Inbound frames are full-duplex commands handled by handleWSMessage.
func (s *Server) handleStateWS(c *websocket.Conn) {
	client := hub.NewClient(s.stateHub, c, s.handleWSMessage)
	client.Run()
}

// handleWSMessage serves the consumer-to-engine half of the websocket
// protocol: ping and command messages. The reply goes only to the
// sender; accepted commands are acknowledged with their job ID.
func (s *Server) handleWSMessage(data []byte) []byte {
	msg, err := protocol.ParseMessage(data)
	if err != nil {
		return errorReply("unparseable message")
	}

	switch msg.Type {
	case protocol.TypePing:
		return reply(protocol.TypePong, nil)

	case protocol.TypeCommand:
		var payload protocol.CommandData
		if err := msg.ParseData(&payload); err != nil {
			return errorReply("invalid command payload")
		}
		if err := payload.Command.Validate(); err != nil {
			return errorReply(err.Error())
		}

		s.mu.Lock()
		jobID, err := s.seq.Do(payload.Command, time.Now())
		s.mu.Unlock()

		if err != nil {
			return errorReply(err.Error())
		}
		return reply(protocol.TypeAck, protocol.AckData{JobID: jobID})

	default:
		// Unknown inbound types are ignored rather than answered, so
		// protocol extensions stay backwards compatible.
		return nil
	}
}

// reply encodes an outbound message, or nil if encoding fails.
func reply(t protocol.MessageType, data interface{}) []byte {
	msg, err := protocol.NewMessage(t, data)
	if err != nil {
		return nil
	}
	b, err := msg.Bytes()
	if err != nil {
		return nil
	}
	return b
}

func errorReply(text string) []byte {
	return reply(protocol.TypeError, protocol.ErrorData{Error: text})
}
