package scheduler

import (
	"context"
	"net/http"

	logger "restaurant-crm-api/src/infrastructure/logger"
	"restaurant-crm-api/src/infrastructure/messaging"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Runner executes one processor invocation.
type Runner interface {
	Run(ctx context.Context) (*messaging.Summary, error)
}

type ISchedulerController interface {
	Run(c *gin.Context)
}

type SchedulerController struct {
	runner Runner
	Logger *logger.Logger
}

func NewSchedulerController(runner Runner, loggerInstance *logger.Logger) ISchedulerController {
	return &SchedulerController{runner: runner, Logger: loggerInstance}
}

// Run performs one pass over due campaigns and returns its summary.
func (c *SchedulerController) Run(ctx *gin.Context) {
	summary, err := c.runner.Run(ctx.Request.Context())
	if err != nil {
		c.Logger.Error("Scheduled run failed", zap.Error(err))
		_ = ctx.Error(err)
		return
	}
	ctx.JSON(http.StatusOK, summary)
}
