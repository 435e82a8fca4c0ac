package models

import (
	"github.com/onyangohw/hardware_backend/utils"
)

type RedisCleaner interface {
	RemoveInstanceRedis() error // remove one
	RemoveAllRedis() error      // remove list & map if exists
}

// remove both item & list + map
func RemoveRedisBoth[T RedisCleaner](obj T) error {
	if err := obj.RemoveInstanceRedis(); err != nil {
		return err
	}
	if err := obj.RemoveAllRedis(); err != nil {
		return err
	}
	return nil
}

func (obj Unit) RemoveInstanceRedis() error {
	if err := utils.RemoveRedisItem[Unit](obj.ID); err != nil {
		return err
	}
	return nil
}

func (obj Unit) RemoveAllRedis() error {
	if err := utils.RemoveRedisList[AllUnit](obj.BusinessId); err != nil {
		return err
	}
	if err := utils.RemoveRedisMap[AllUnit](obj.BusinessId); err != nil {
		return err
	}
	return nil
}

func (obj Customer) RemoveInstanceRedis() error {
	if err := utils.RemoveRedisItem[Customer](obj.ID); err != nil {
		return err
	}
	return nil
}

func (obj Customer) RemoveAllRedis() error {
	return nil
}

func (obj Category) RemoveInstanceRedis() error {
	if err := utils.RemoveRedisItem[Category](obj.ID); err != nil {
		return err
	}
	return nil
}

func (obj Category) RemoveAllRedis() error {
	if err := utils.RemoveRedisList[AllCategory](obj.BusinessId); err != nil {
		return err
	}
	if err := utils.RemoveRedisMap[AllCategory](obj.BusinessId); err != nil {
		return err
	}
	return nil
}

func (obj Product) RemoveInstanceRedis() error {
	if err := utils.RemoveRedisItem[Product](obj.ID); err != nil {
		return err
	}
	return nil
}

func (obj Product) RemoveAllRedis() error {
	return nil
}

func (obj Supplier) RemoveInstanceRedis() error {
	if err := utils.RemoveRedisItem[Supplier](obj.ID); err != nil {
		return err
	}
	return nil
}

func (obj Supplier) RemoveAllRedis() error {
	return nil
}

func (obj JobType) RemoveInstanceRedis() error {
	if err := utils.RemoveRedisItem[JobType](obj.ID); err != nil {
		return err
	}
	return nil
}

func (obj JobType) RemoveAllRedis() error {
	if err := utils.RemoveRedisList[AllJobType](obj.BusinessId); err != nil {
		return err
	}
	if err := utils.RemoveRedisMap[AllJobType](obj.BusinessId); err != nil {
		return err
	}
	return nil
}
