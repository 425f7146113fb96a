package api

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/fosdem/lumafilter/lib/filter"
)

type BrightnessReq struct {
	Brightness *float64 `json:"brightness" example:"0.2"`
}

type BrightnessResp struct {
	Brightness float64 `json:"brightness" example:"0.2"`
	Offset     int     `json:"offset" example:"51"`
}

// @Summary	Get the current brightness
// @Router		/api/brightness [get]
// @Tags		filter
// @Produce	json
// @Success	200	{object}	BrightnessResp
func (a *Api) getBrightness(w http.ResponseWriter, _ *http.Request) {
	b := a.pipeline.Filter.Brightness()
	a.writeJSON(w, &BrightnessResp{Brightness: b.Factor(), Offset: b.Offset()})
}

// @Summary	Change the brightness while frames are flowing
// @Router		/api/brightness [put]
// @Param		brightnessReq	body	BrightnessReq	true	"New brightness between -1 and 1"
// @Tags		filter
// @Accept		json
// @Produce	json
// @Success	200	{object}	BrightnessResp
// @Failure	400	{string}	string	"Could not decode json request"
// @Failure	400	{string}	string	"The brightness is out of range"
func (a *Api) putBrightness(w http.ResponseWriter, req *http.Request) {
	var brightnessReq BrightnessReq
	err := json.NewDecoder(req.Body).Decode(&brightnessReq)
	if err != nil {
		http.Error(w, fmt.Sprintf("could not decode json request: %s", err), http.StatusBadRequest)
		return
	}
	if brightnessReq.Brightness == nil {
		http.Error(w, "missing brightness", http.StatusBadRequest)
		return
	}

	err = a.pipeline.Filter.SetBrightness(*brightnessReq.Brightness)
	if err != nil {
		http.Error(w, fmt.Sprintf("could not set brightness: %s", err), http.StatusBadRequest)
		return
	}
	a.getBrightness(w, req)
}

// @Summary	List the adjustable filter properties
// @Router		/api/properties [get]
// @Tags		filter
// @Produce	json
// @Success	200	{array}	filter.PropertySpec
func (a *Api) getProperties(w http.ResponseWriter, _ *http.Request) {
	a.writeJSON(w, filter.Properties)
}
