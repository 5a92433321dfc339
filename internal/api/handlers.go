package api

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"ProfitPredictor/internal/collector"
	"ProfitPredictor/internal/model"
	"ProfitPredictor/internal/recorder"
	"ProfitPredictor/internal/strategy"
)

func (h *Handler) assets(c *gin.Context) {
	c.JSON(http.StatusOK, h.Service.Assets())
}

func (h *Handler) signals(c *gin.Context) {
	evs, err := h.Store.All(c.Request.Context())
	if err != nil {
		errorJSON(c, http.StatusInternalServerError, err.Error())
		return
	}
	c.JSON(http.StatusOK, evs)
}

// signal returns the latest evaluation for one watch when both ?horizon= and
// ?rule= are given, otherwise every stored evaluation of the asset that
// matches the filters.
func (h *Handler) signal(c *gin.Context) {
	asset := c.Param("asset")
	if _, err := h.Service.Asset(asset); err != nil {
		errorJSON(c, http.StatusNotFound, err.Error())
		return
	}
	ctx := c.Request.Context()

	var hz model.Horizon
	if raw := c.Query("horizon"); raw != "" {
		parsed, err := model.ParseHorizon(raw)
		if err != nil {
			errorJSON(c, http.StatusBadRequest, err.Error())
			return
		}
		hz = parsed
	}
	var rule model.Rule
	if raw := c.Query("rule"); raw != "" {
		parsed, err := model.ParseRule(raw)
		if err != nil {
			errorJSON(c, http.StatusBadRequest, err.Error())
			return
		}
		rule = parsed
	}

	if hz != "" && rule != "" {
		ev, ok, err := h.Store.Get(ctx, asset, hz, rule)
		if err != nil {
			errorJSON(c, http.StatusInternalServerError, err.Error())
			return
		}
		if !ok {
			errorJSON(c, http.StatusNotFound, "no result available")
			return
		}
		c.JSON(http.StatusOK, ev)
		return
	}

	all, err := h.Store.All(ctx)
	if err != nil {
		errorJSON(c, http.StatusInternalServerError, err.Error())
		return
	}
	results := make([]*model.Evaluation, 0, 4)
	for _, ev := range all {
		if ev.AssetID != asset || (hz != "" && ev.Horizon != hz) || (rule != "" && ev.Rule != rule) {
			continue
		}
		results = append(results, ev)
	}
	if len(results) == 0 && (hz != "" || rule != "") {
		errorJSON(c, http.StatusNotFound, "no result available")
		return
	}
	c.JSON(http.StatusOK, results)
}

func (h *Handler) evaluate(c *gin.Context) {
	asset := c.Query("asset")
	if asset == "" {
		errorJSON(c, http.StatusBadRequest, "asset is required")
		return
	}
	hz, err := model.ParseHorizon(c.DefaultQuery("horizon", string(model.HorizonShort)))
	if err != nil {
		errorJSON(c, http.StatusBadRequest, err.Error())
		return
	}
	rule, err := model.ParseRule(c.Query("rule"))
	if err != nil {
		errorJSON(c, http.StatusBadRequest, err.Error())
		return
	}
	days := h.Days
	if days == 0 {
		days = collector.DefaultDays
	}
	if raw := c.Query("days"); raw != "" {
		if days, err = strconv.Atoi(raw); err != nil {
			errorJSON(c, http.StatusBadRequest, "days must be an integer")
			return
		}
	}
	if err := collector.ValidateDays(days); err != nil {
		errorJSON(c, http.StatusBadRequest, err.Error())
		return
	}
	policy, ok := strategy.Find(h.Policies, hz, rule)
	if !ok {
		errorJSON(c, http.StatusBadRequest, "no policy for "+strategy.PolicyName(hz, rule))
		return
	}

	ev, err := h.Service.Evaluate(c.Request.Context(), collector.Request{AssetID: asset, Policy: policy, Days: days})
	switch {
	case err == nil:
		c.JSON(http.StatusOK, ev)
	case errors.Is(err, collector.ErrUnknownAsset):
		errorJSON(c, http.StatusNotFound, err.Error())
	case errors.Is(err, collector.ErrNoData):
		errorJSON(c, http.StatusNotFound, "no result available")
	default:
		errorJSON(c, http.StatusBadGateway, err.Error())
	}
}

func (h *Handler) history(c *gin.Context) {
	if h.Recorder == nil {
		c.JSON(http.StatusOK, []recorder.Row{})
		return
	}
	limit, err := strconv.Atoi(c.DefaultQuery("limit", "50"))
	if err != nil || limit <= 0 || limit > 1000 {
		errorJSON(c, http.StatusBadRequest, "limit must be between 1 and 1000")
		return
	}
	rows, err := h.Recorder.Recent(c.Query("asset"), limit)
	if err != nil {
		errorJSON(c, http.StatusInternalServerError, err.Error())
		return
	}
	if rows == nil {
		rows = []recorder.Row{}
	}
	c.JSON(http.StatusOK, rows)
}
