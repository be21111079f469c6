package main

import (
	"fmt"

	_ "github.com/lib/pq"
	"github.com/spf13/viper"

	"hookline.io/xano-connector/backendconfig"
	"hookline.io/xano-connector/gateway"
	jobsdb "hookline.io/xano-connector/jobs"
	"hookline.io/xano-connector/models"
	"hookline.io/xano-connector/runner"
	stats "hookline.io/xano-connector/services"
	"hookline.io/xano-connector/utils/logger"
)

func main() {
	defer logger.Sync()

	viper.SetConfigFile("config.yaml")
	viper.AutomaticEnv()
	if err := viper.ReadInConfig(); err != nil {
		logger.Info(fmt.Sprintf("No config file loaded, using defaults and environment. Error: %s", err.Error()))
	}

	stats.Init()

	var credentialStore *backendconfig.HandleT
	if viper.GetBool("database.enabled") {
		credentialStore = &backendconfig.HandleT{}
		if err := credentialStore.Setup(); err != nil {
			logger.Error(fmt.Sprintf("Failed to set up credential store. Error: %s", err.Error()))
			credentialStore = nil
		}
	}

	var journal jobsdb.HandleT
	if viper.GetBool("Journal.enabled") {
		db, err := models.Connect(backendconfig.GetConnectionString())
		if err != nil {
			logger.Error(fmt.Sprintf("Failed to connect journal database. Error: %s", err.Error()))
		} else if err := journal.Setup(db); err != nil {
			logger.Error(fmt.Sprintf("Failed to set up execution journal. Error: %s", err.Error()))
		}
	}

	var gw gateway.HandleT
	gw.Setup(credentialStore, &journal)

	if err := runner.CreateServer(&gw); err != nil {
		logger.Fatal(fmt.Sprintf("Server terminated. Error: %s", err.Error()))
	}
}
