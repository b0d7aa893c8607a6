package handlers

import (
	"embed"
	"fmt"
	"html/template"
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/playmatatu/billiards/internal/billiards"
	"github.com/playmatatu/billiards/internal/game"
	"github.com/playmatatu/billiards/internal/render"
	"github.com/rs/zerolog"
)

//go:embed templates/*.tmpl
var templateFS embed.FS

// Templates parses the HTML pages rendered by the form handlers.
func Templates() *template.Template {
	return template.Must(template.New("").ParseFS(templateFS, "templates/*.tmpl"))
}

// frameFilesMu serialises requests that rewrite the rendered frame files.
var frameFilesMu sync.Mutex

type displayForm struct {
	SBNumber *int     `form:"sb_number" binding:"required,min=0,max=15"`
	SBX      *float64 `form:"sb_x" binding:"required"`
	SBY      *float64 `form:"sb_y" binding:"required"`
	RBNumber *int     `form:"rb_number" binding:"required,min=0,max=15"`
	RBX      *float64 `form:"rb_x" binding:"required"`
	RBY      *float64 `form:"rb_y" binding:"required"`
	RBDX     *float64 `form:"rb_dx" binding:"required"`
	RBDY     *float64 `form:"rb_dy" binding:"required"`
}

func (f displayForm) table() (billiards.Table, billiards.RollingBall, error) {
	if err := finite("ball coordinates", *f.SBX, *f.SBY, *f.RBX, *f.RBY); err != nil {
		return billiards.Table{}, billiards.RollingBall{}, err
	}
	if err := finite("rolling ball velocity", *f.RBDX, *f.RBDY); err != nil {
		return billiards.Table{}, billiards.RollingBall{}, err
	}
	if err := checkSpeed("rolling ball velocity", *f.RBDX, *f.RBDY); err != nil {
		return billiards.Table{}, billiards.RollingBall{}, err
	}

	sb := billiards.StillBall{Number: *f.SBNumber, Pos: billiards.NewCoordinate(*f.SBX, *f.SBY)}
	rb := billiards.RollingBall{
		Number: *f.RBNumber,
		Pos:    billiards.NewCoordinate(*f.RBX, *f.RBY),
		Vel:    billiards.NewCoordinate(*f.RBDX, *f.RBDY),
	}

	table := billiards.NewTable()
	if err := table.Append(sb); err != nil {
		return billiards.Table{}, rb, err
	}
	if err := table.Append(rb); err != nil {
		return billiards.Table{}, rb, err
	}
	return table, rb, nil
}

// Display simulates one still and one rolling ball, stores every frame and
// writes them as table-N.svg files into staticDir, replacing the files of the
// previous request.
func Display(games *game.Manager, staticDir string, log zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		var form displayForm
		if err := c.ShouldBind(&form); err != nil {
			respondPageError(c, bindError(err))
			return
		}
		table, rb, err := form.table()
		if err != nil {
			respondPageError(c, err)
			return
		}

		frameFilesMu.Lock()
		defer frameFilesMu.Unlock()

		if err := render.PurgeFrames(staticDir); err != nil {
			respondPageError(c, err)
			return
		}
		res, err := games.Simulate(c.Request.Context(), table)
		if err != nil {
			respondPageError(c, err)
			return
		}
		files, err := render.WriteFrames(staticDir, res.Result.Frames)
		if err != nil {
			respondPageError(c, err)
			return
		}

		log.Info().Int("frames", len(files)).Float64("duration", res.Result.Duration()).Msg("display rendered")
		c.HTML(http.StatusOK, "display.tmpl", gin.H{
			"Form":     form,
			"Acc":      rb.Acc(),
			"Files":    files,
			"FrameIDs": res.FrameIDs,
			"Duration": res.Result.Duration(),
		})
	}
}

type newGameForm struct {
	GameName    string `form:"game_name" binding:"required"`
	Player1Name string `form:"player1_name" binding:"required"`
	Player2Name string `form:"player2_name" binding:"required"`
}

// NewGame creates a game, racks the table and shows the opening frame with a
// form for the first shot.
func NewGame(games *game.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		var form newGameForm
		if err := c.ShouldBind(&form); err != nil {
			respondPageError(c, bindError(err))
			return
		}

		res, err := games.NewGame(c.Request.Context(), form.GameName, form.Player1Name, form.Player2Name)
		if err != nil {
			respondPageError(c, err)
			return
		}

		c.HTML(http.StatusOK, "new.tmpl", gin.H{
			"Game":       res.Game,
			"FrameID":    res.OpeningFrame,
			"NextPlayer": res.Game.Player1Name,
		})
	}
}

type shotForm struct {
	GameName   string   `form:"game_name" binding:"required"`
	PlayerName string   `form:"player_name" binding:"required"`
	CueDX      *float64 `form:"cue_dx" binding:"required"`
	CueDY      *float64 `form:"cue_dy" binding:"required"`
	FrameID    *int     `form:"frame_id" binding:"omitempty,min=0"`
}

// DisplayShot takes a shot in a stored game and shows an animated replay of
// its frames.
func DisplayShot(games *game.Manager, replaySpeed float64) gin.HandlerFunc {
	return func(c *gin.Context) {
		var form shotForm
		if err := c.ShouldBind(&form); err != nil {
			respondPageError(c, bindError(err))
			return
		}
		if err := finite("cue velocity", *form.CueDX, *form.CueDY); err != nil {
			respondPageError(c, err)
			return
		}
		if err := checkSpeed("cue velocity", *form.CueDX, *form.CueDY); err != nil {
			respondPageError(c, err)
			return
		}
		fromFrame := -1
		if form.FrameID != nil {
			fromFrame = *form.FrameID
		}

		res, err := games.TakeShot(c.Request.Context(), form.GameName, form.PlayerName, fromFrame,
			billiards.NewCoordinate(*form.CueDX, *form.CueDY))
		if err != nil {
			respondPageError(c, err)
			return
		}

		next := res.Game.Player1Name
		if res.Shot.PlayerName == res.Game.Player1Name {
			next = res.Game.Player2Name
		}
		if replaySpeed <= 0 {
			replaySpeed = 1
		}

		c.HTML(http.StatusOK, "display2.tmpl", gin.H{
			"Game":       res.Game,
			"Shot":       res.Shot,
			"FromFrame":  res.FromFrame,
			"FrameIDs":   res.FrameIDs,
			"Duration":   fmt.Sprintf("%.2f", res.Result.Duration()),
			"IntervalMS": billiards.FrameRate * 1000 / replaySpeed,
			"NextPlayer": next,
		})
	}
}
