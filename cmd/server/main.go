package main

import (
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	zerologlog "github.com/rs/zerolog/log"
	qrcode "github.com/skip2/go-qrcode"
	"github.com/smazur/bidwars/internal/config"
	"github.com/smazur/bidwars/internal/game"
	"github.com/smazur/bidwars/internal/ws"
)

const version = "v1.0.0"

func main() {
	var (
		showHelp    = flag.Bool("help", false, "Show help message")
		showVersion = flag.Bool("version", false, "Show version information")
		portFlag    = flag.String("port", "", "Port to listen on (overrides PORT env var)")
	)
	flag.BoolVar(showHelp, "h", false, "Show help message (shorthand)")
	flag.BoolVar(showVersion, "v", false, "Show version information (shorthand)")
	flag.Parse()

	if *showHelp {
		fmt.Printf(`Bidwars - host-refereed live bidding game

Usage: %s [options]

Options:
  -h, --help      Show this help message
  -v, --version   Show version information
  --port PORT     Port to listen on (default: 5000 or PORT env var)

Environment Variables:
  PORT              Port to listen on (default: 5000)
  PUBLIC_URL        Base URL encoded into join QR codes (default: http://localhost:5000)
  STARTING_POINTS   Point balance for joining players (default: 100)
  ROOM_CODE_LENGTH  Length of generated room codes (default: 6)

Examples:
  %s                Start server with default settings
  %s --port 3000    Start server on port 3000
`, os.Args[0], os.Args[0], os.Args[0])
		return
	}

	if *showVersion {
		fmt.Printf("Bidwars %s\n", version)
		return
	}

	_ = godotenv.Load()
	cfg := config.FromEnv()

	port := *portFlag
	if port == "" {
		port = cfg.Port
	}

	// zerolog setup (human-friendly console)
	zerolog.TimeFieldFormat = time.RFC3339
	cw := zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}
	zerologlog.Logger = zerologlog.Output(cw)

	// Gin setup with custom logger (skip /socket.io noise)
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(func(c *gin.Context) {
		start := time.Now()
		c.Next()
		path := c.Request.URL.Path
		if strings.HasPrefix(path, "/socket.io") {
			return
		}
		status := c.Writer.Status()
		dur := time.Since(start)
		zerologlog.Info().Str("path", path).Int("status", status).Dur("dur", dur).Msg("http")
	})

	// Healthcheck
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": true, "time": time.Now().UTC()})
	})

	// Socket server + room registry
	reg := game.NewRegistry(game.Settings{
		CodeLength:     cfg.CodeLength,
		StartingPoints: cfg.StartingPoints,
	})
	sock := ws.New(reg)
	io := sock.Mount(r)
	defer io.Close()

	// Room info, so the join form can validate a code before opening a socket
	r.GET("/api/rooms/:code", func(c *gin.Context) {
		room, err := reg.Get(c.Param("code"))
		if err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"roomCode":    room.Code,
			"hostName":    room.HostName,
			"playerCount": room.PlayerCount(),
			"phase":       room.Phase(),
		})
	})

	// Downloadable CSV of every judged bid in the room so far
	r.GET("/api/rooms/:code/report", func(c *gin.Context) {
		room, err := reg.Get(c.Param("code"))
		if err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}
		c.Header("Content-Type", "text/csv; charset=utf-8")
		c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%s-results.csv", room.Code))
		if err := game.WriteReport(c.Writer, room); err != nil {
			zerologlog.Error().Err(err).Str("code", room.Code).Msg("failed to write report")
		}
	})

	// QR code with the join link, for the host to put on a shared screen
	r.GET("/api/rooms/:code/qr", func(c *gin.Context) {
		room, err := reg.Get(c.Param("code"))
		if err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}
		joinURL := fmt.Sprintf("%s/?join=%s", strings.TrimRight(cfg.PublicURL, "/"), room.Code)
		png, err := qrcode.Encode(joinURL, qrcode.Medium, 256)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to generate qr code"})
			return
		}
		c.Data(http.StatusOK, "image/png", png)
	})

	log.Printf("listening on :%s", port)
	if err := r.Run(":" + port); err != nil {
		log.Fatal(err)
	}
}
