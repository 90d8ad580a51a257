package promo

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewProvisioner_EmptyKeyIsNil(t *testing.T) {
	assert.Nil(t, NewProvisioner("", 5))
}

func TestStageCode_NilProvisionerIsNoCode(t *testing.T) {
	var p *Provisioner

	assert.Equal(t, "", p.StageCode(context.Background(), "buyer@example.com"))
}
