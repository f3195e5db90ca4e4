package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	careerUC "github.com/khoahotran/career-compass/internal/application/usecase/career"
	"github.com/khoahotran/career-compass/pkg/apperror"
	"github.com/khoahotran/career-compass/pkg/logger"
)

type CareerHandler struct {
	careerUseCase *careerUC.CareerUseCase
	logger        logger.Logger
}

func NewCareerHandler(uc *careerUC.CareerUseCase, log logger.Logger) *CareerHandler {
	return &CareerHandler{careerUseCase: uc, logger: log}
}

func (h *CareerHandler) AnalyzeCareer(c *gin.Context) {
	u, ok := GetUserFromGinContext(c)
	if !ok {
		c.Error(apperror.NewUnauthorized("Could not validate credentials", nil))
		return
	}

	output, err := h.careerUseCase.ExecuteAnalyze(c.Request.Context(), careerUC.AnalyzeInput{UserID: u.ID})
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, CareerPathsResponse{CareerPaths: output.CareerPaths})
}

func (h *CareerHandler) SearchCareer(c *gin.Context) {
	u, ok := GetUserFromGinContext(c)
	if !ok {
		c.Error(apperror.NewUnauthorized("Could not validate credentials", nil))
		return
	}

	var req CareerSearchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(apperror.NewInvalidInput(err.Error(), err))
		return
	}

	output, err := h.careerUseCase.ExecuteSearch(c.Request.Context(), careerUC.SearchInput{
		UserID: u.ID,
		Query:  req.CareerQuery,
	})
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, CareerPathsResponse{CareerPaths: output.CareerPaths})
}

func (h *CareerHandler) ListAnalyses(c *gin.Context) {
	u, ok := GetUserFromGinContext(c)
	if !ok {
		c.Error(apperror.NewUnauthorized("Could not validate credentials", nil))
		return
	}

	output, err := h.careerUseCase.ExecuteListAnalyses(c.Request.Context(), careerUC.ListAnalysesInput{UserID: u.ID})
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, ToAnalysesResponse(output.Analyses))
}
