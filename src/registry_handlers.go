package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"time"

	"workerlink/src/db"
	"workerlink/src/lib"
	"workerlink/src/models"
	"workerlink/src/types"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

func registryHandlers(g *gin.RouterGroup) *gin.RouterGroup {
	g.
		POST("/fcm-token", func(ctx *gin.Context) {
			var body types.RegisterPushTokenRequestBody
			if err := ctx.ShouldBindJSON(&body); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"success": false, "message": err.Error()})
				return
			}
			dbi := db.GetDb()
			err := dbi.Transaction(func(tx *gorm.DB) error {
				res := tx.
					Model(&models.PushToken{}).
					Where("user_id = ? AND user_type = ?", body.UserID, body.UserType).
					Update("token", body.Token)
				if res.Error != nil {
					return res.Error
				}
				if res.RowsAffected == 0 {
					return tx.Create(&models.PushToken{
						UserID:   body.UserID,
						UserType: body.UserType,
						Token:    body.Token,
					}).Error
				}
				return nil
			})
			if err != nil {
				log.Printf("Error registering push token for %s %d: %s\n", body.UserType, body.UserID, err.Error())
				ctx.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Error while processing request"})
				return
			}

			go func() {
				rd := lib.GetRedisClient()
				if rd == nil {
					return
				}
				key := fmt.Sprintf("fcm:%s:%d", body.UserType, body.UserID)
				if err := rd.Set(context.Background(), key, body.Token, 0).Err(); err != nil {
					log.Printf("[redis] Error updating token cache: %s\n", err.Error())
				}
			}()

			ctx.JSON(http.StatusOK, gin.H{"success": true})
		}).
		POST("/worker-location", func(ctx *gin.Context) {
			var body types.WorkerLocationRequestBody
			if err := ctx.ShouldBindJSON(&body); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"success": false, "message": err.Error()})
				return
			}
			dbi := db.GetDb()
			err := dbi.Transaction(func(tx *gorm.DB) error {
				res := tx.
					Model(&models.WorkerLocation{}).
					Where("worker_id = ?", body.WorkerID).
					Updates(map[string]any{
						"latitude":  *body.Latitude,
						"longitude": *body.Longitude,
					})
				if res.Error != nil {
					return res.Error
				}
				if res.RowsAffected == 0 {
					return tx.Create(&models.WorkerLocation{
						WorkerID:  body.WorkerID,
						Latitude:  *body.Latitude,
						Longitude: *body.Longitude,
					}).Error
				}
				return nil
			})
			if err != nil {
				log.Printf("Error updating location for worker %d: %s\n", body.WorkerID, err.Error())
				ctx.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Error while processing request"})
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"success": true})
		}).
		POST("/workers/:id/address", func(ctx *gin.Context) {
			var params types.SimpleRequestParams
			if err := ctx.ShouldBindUri(&params); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"success": false, "message": err.Error()})
				return
			}
			var body types.WorkerAddressRequestBody
			if err := ctx.ShouldBindJSON(&body); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"success": false, "message": err.Error()})
				return
			}
			gctx, cancel := context.WithTimeout(ctx.Request.Context(), 5*time.Second)
			defer cancel()
			lat, lng, err := lib.GeocodeAddress(gctx, body.Address)
			if err != nil {
				log.Printf("Error geocoding address for worker %d: %s\n", params.ID, err.Error())
				ctx.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "could not geocode address"})
				return
			}
			dbi := db.GetDb()
			err = dbi.Transaction(func(tx *gorm.DB) error {
				res := tx.
					Model(&models.Worker{}).
					Where("id = ?", params.ID).
					Updates(map[string]any{
						"home_address": body.Address,
						"home_lat":     lat,
						"home_lng":     lng,
					})
				if res.Error != nil {
					return res.Error
				}
				if res.RowsAffected == 0 {
					return tx.Create(&models.Worker{
						ID:          params.ID,
						HomeAddress: body.Address,
						HomeLat:     &lat,
						HomeLng:     &lng,
					}).Error
				}
				return nil
			})
			if err != nil {
				log.Printf("Error saving address for worker %d: %s\n", params.ID, err.Error())
				ctx.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Error while processing request"})
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"success": true, "data": gin.H{"home_lat": lat, "home_lng": lng}})
		})
	return g
}
