package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/viper"
)

var loadEnvFileFunc = loadEnvFile

// loadEnvFile は .env 形式のファイルを読み込み、未設定の環境変数だけを設定する。
// explicit が false の場合、ファイルが存在しなければ何もしない。
func loadEnvFile(path string, explicit bool) error {
	if path == "" {
		return nil
	}
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) && !explicit {
			return nil
		}
		return fmt.Errorf("failed to access env file: %w", err)
	}

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("env")
	if err := v.ReadInConfig(); err != nil {
		return fmt.Errorf("failed to read env file %s: %w", path, err)
	}

	// viperはキーを小文字にするので環境変数名は大文字に戻す
	for _, key := range v.AllKeys() {
		name := strings.ToUpper(key)
		if _, set := os.LookupEnv(name); set {
			continue
		}
		if err := os.Setenv(name, v.GetString(key)); err != nil {
			return fmt.Errorf("failed to set %s: %w", name, err)
		}
	}
	return nil
}
