package backendconfig

import (
	"database/sql"
	"fmt"

	"github.com/spf13/viper"

	"hookline.io/xano-connector/utils/logger"
)

func GetConnectionString() string {
	return fmt.Sprintf("host=%s port=%s user=%s "+
		"password=%s dbname=%s sslmode=disable",
		viper.GetString("database.host"),
		viper.GetString("database.port"),
		viper.GetString("database.user"),
		viper.GetString("database.password"),
		viper.GetString("database.name"))
}

// Setup opens the credential store. The store is optional: when no
// database is configured the gateway simply cannot resolve named
// credentials and every request must carry an inline credential.
func (cd *HandleT) Setup() error {
	var err error

	psqlInfo := GetConnectionString()

	cd.dbHandle, err = sql.Open("postgres", psqlInfo)
	if err != nil {
		return err
	}

	return cd.createCredentialTable()
}

func (cd *HandleT) createCredentialTable() error {
	sqlStatement := `CREATE TABLE IF NOT EXISTS credential_config (
		id BIGSERIAL PRIMARY KEY,
		name VARCHAR(255) UNIQUE NOT NULL,
		base_url TEXT NOT NULL,
		access_token TEXT NOT NULL);`

	_, err := cd.dbHandle.Exec(sqlStatement)
	return err
}

func (cd *HandleT) SaveCredential(cred CredentialT) error {
	sqlStatement := `INSERT INTO credential_config (name, base_url, access_token)
		VALUES ($1, $2, $3)
		ON CONFLICT (name) DO UPDATE SET base_url = $2, access_token = $3`

	_, err := cd.dbHandle.Exec(sqlStatement, cred.Name, cred.BaseURL, cred.AccessToken)
	if err != nil {
		logger.Error(fmt.Sprintf("Failed to save credential %s. Error: %s", cred.Name, err.Error()))
	}
	return err
}

func (cd *HandleT) GetCredential(name string) (CredentialT, bool) {
	sqlStatement := `SELECT name, base_url, access_token FROM credential_config WHERE name = $1`

	var cred CredentialT
	err := cd.dbHandle.QueryRow(sqlStatement, name).Scan(&cred.Name, &cred.BaseURL, &cred.AccessToken)
	if err != nil {
		if err != sql.ErrNoRows {
			logger.Error(fmt.Sprintf("Failed to look up credential %s. Error: %s", name, err.Error()))
		}
		return CredentialT{}, false
	}
	return cred, true
}
