package models

import (
	"fmt"

	"gorm.io/gorm"
)

func (c *Customer) AfterCreate(tx *gorm.DB) (err error) {
	if err := SaveActivityCreate(tx, c.ID, c, "Created Customer"); err != nil {
		return err
	}

	return nil
}

func (c *Customer) BeforeUpdate(tx *gorm.DB) (err error) {
	if err := SaveActivityUpdate(tx, c.ID, c, "Updated Customer"); err != nil {
		return err
	}
	if err := c.RemoveInstanceRedis(); err != nil {
		return err
	}

	return nil
}

func (c *Customer) AfterDelete(tx *gorm.DB) (err error) {
	if err := SaveActivityDelete(tx, c.ID, c, "Deleted Customer"); err != nil {
		return err
	}
	if err := c.RemoveInstanceRedis(); err != nil {
		return err
	}

	return nil
}

func (c *Category) AfterCreate(tx *gorm.DB) (err error) {
	if err := SaveActivityCreate(tx, c.ID, c, "Created Category"); err != nil {
		return err
	}
	if err := c.RemoveAllRedis(); err != nil {
		return err
	}

	return nil
}

func (c *Category) BeforeUpdate(tx *gorm.DB) (err error) {
	if err := SaveActivityUpdate(tx, c.ID, c, "Updated Category"); err != nil {
		return err
	}
	if err := RemoveRedisBoth(c); err != nil {
		return err
	}

	return nil
}

func (c *Category) AfterDelete(tx *gorm.DB) (err error) {
	if err := SaveActivityDelete(tx, c.ID, c, "Deleted Category"); err != nil {
		return err
	}
	if err := RemoveRedisBoth(c); err != nil {
		return err
	}

	return nil
}

func (p *Product) AfterCreate(tx *gorm.DB) (err error) {
	if err := SaveActivityCreate(tx, p.ID, p, "Created Product"); err != nil {
		return err
	}

	return nil
}

func (p *Product) BeforeUpdate(tx *gorm.DB) (err error) {
	if err := SaveActivityUpdate(tx, p.ID, p, "Updated Product"); err != nil {
		return err
	}
	if err := p.RemoveInstanceRedis(); err != nil {
		return err
	}

	return nil
}

func (p *Product) AfterDelete(tx *gorm.DB) (err error) {
	if err := SaveActivityDelete(tx, p.ID, p, "Deleted Product"); err != nil {
		return err
	}
	if err := p.RemoveInstanceRedis(); err != nil {
		return err
	}

	return nil
}

func (s *Supplier) AfterCreate(tx *gorm.DB) (err error) {
	if err := SaveActivityCreate(tx, s.ID, s, "Created Supplier"); err != nil {
		return err
	}

	return nil
}

func (s *Supplier) BeforeUpdate(tx *gorm.DB) (err error) {
	if err := SaveActivityUpdate(tx, s.ID, s, "Updated Supplier"); err != nil {
		return err
	}
	if err := s.RemoveInstanceRedis(); err != nil {
		return err
	}

	return nil
}

func (s *Supplier) AfterDelete(tx *gorm.DB) (err error) {
	if err := SaveActivityDelete(tx, s.ID, s, "Deleted Supplier"); err != nil {
		return err
	}
	if err := s.RemoveInstanceRedis(); err != nil {
		return err
	}

	return nil
}

func (j *JobType) AfterCreate(tx *gorm.DB) (err error) {
	if err := SaveActivityCreate(tx, j.ID, j, "Created JobType"); err != nil {
		return err
	}
	if err := j.RemoveAllRedis(); err != nil {
		return err
	}

	return nil
}

func (j *JobType) BeforeUpdate(tx *gorm.DB) (err error) {
	if err := SaveActivityUpdate(tx, j.ID, j, "Updated JobType"); err != nil {
		return err
	}
	if err := RemoveRedisBoth(j); err != nil {
		return err
	}

	return nil
}

func (j *JobType) AfterDelete(tx *gorm.DB) (err error) {
	if err := SaveActivityDelete(tx, j.ID, j, "Deleted JobType"); err != nil {
		return err
	}
	if err := RemoveRedisBoth(j); err != nil {
		return err
	}

	return nil
}

func (s *Sale) AfterCreate(tx *gorm.DB) (err error) {
	description := fmt.Sprintf("Created Sale %s for %s", s.SaleNumber, s.FinalAmount)
	if err := SaveActivityCreate(tx, s.ID, s, description); err != nil {
		return err
	}

	return nil
}

func (s *Sale) BeforeUpdate(tx *gorm.DB) (err error) {
	if err := SaveActivityUpdate(tx, s.ID, s, "Updated Sale"); err != nil {
		return err
	}

	return nil
}

func (p *Payment) AfterCreate(tx *gorm.DB) (err error) {
	description := fmt.Sprintf("Created Payment of %s", p.Amount)
	if err := SaveActivityCreate(tx, p.ID, p, description); err != nil {
		return err
	}

	return nil
}

func (r *Refund) AfterCreate(tx *gorm.DB) (err error) {
	description := fmt.Sprintf("Created Refund of %s", r.Amount)
	if err := SaveActivityCreate(tx, r.ID, r, description); err != nil {
		return err
	}

	return nil
}

func (e *Expense) AfterCreate(tx *gorm.DB) (err error) {
	description := fmt.Sprintf("Created Expense of %s", e.Amount)
	if err := SaveActivityCreate(tx, e.ID, e, description); err != nil {
		return err
	}

	return nil
}

func (e *Expense) BeforeUpdate(tx *gorm.DB) (err error) {
	if err := SaveActivityUpdate(tx, e.ID, e, "Updated Expense"); err != nil {
		return err
	}

	return nil
}

func (e *Expense) AfterDelete(tx *gorm.DB) (err error) {
	if err := SaveActivityDelete(tx, e.ID, e, "Deleted Expense"); err != nil {
		return err
	}

	return nil
}

func (q *Quote) AfterCreate(tx *gorm.DB) (err error) {
	if err := SaveActivityCreate(tx, q.ID, q, "Created Quote "+q.QuoteNumber); err != nil {
		return err
	}

	return nil
}

func (q *Quote) BeforeUpdate(tx *gorm.DB) (err error) {
	if err := SaveActivityUpdate(tx, q.ID, q, "Updated Quote"); err != nil {
		return err
	}

	return nil
}

func (q *Quote) AfterDelete(tx *gorm.DB) (err error) {
	if err := SaveActivityDelete(tx, q.ID, q, "Deleted Quote"); err != nil {
		return err
	}

	return nil
}

func (o *PurchaseOrder) AfterCreate(tx *gorm.DB) (err error) {
	if err := SaveActivityCreate(tx, o.ID, o, "Created PurchaseOrder "+o.OrderNumber); err != nil {
		return err
	}

	return nil
}

func (o *PurchaseOrder) BeforeUpdate(tx *gorm.DB) (err error) {
	if err := SaveActivityUpdate(tx, o.ID, o, "Updated PurchaseOrder"); err != nil {
		return err
	}

	return nil
}

func (o *PurchaseOrder) AfterDelete(tx *gorm.DB) (err error) {
	if err := SaveActivityDelete(tx, o.ID, o, "Deleted PurchaseOrder"); err != nil {
		return err
	}

	return nil
}

func (g *GoodsReceipt) AfterCreate(tx *gorm.DB) (err error) {
	if err := SaveActivityCreate(tx, g.ID, g, "Created GoodsReceipt "+g.ReceiptNumber); err != nil {
		return err
	}

	return nil
}

func (j *RepairJob) AfterCreate(tx *gorm.DB) (err error) {
	if err := SaveActivityCreate(tx, j.ID, j, "Created RepairJob "+j.JobNumber); err != nil {
		return err
	}

	return nil
}

func (j *RepairJob) BeforeUpdate(tx *gorm.DB) (err error) {
	if err := SaveActivityUpdate(tx, j.ID, j, "Updated RepairJob"); err != nil {
		return err
	}

	return nil
}

func (j *RepairJob) AfterDelete(tx *gorm.DB) (err error) {
	if err := SaveActivityDelete(tx, j.ID, j, "Deleted RepairJob"); err != nil {
		return err
	}

	return nil
}

func (p *RepairPayment) AfterCreate(tx *gorm.DB) (err error) {
	description := fmt.Sprintf("Created RepairPayment of %s", p.Amount)
	if err := SaveActivityCreate(tx, p.ID, p, description); err != nil {
		return err
	}

	return nil
}

func (r *MaterialRequest) AfterCreate(tx *gorm.DB) (err error) {
	if err := SaveActivityCreate(tx, r.ID, r, "Created MaterialRequest "+r.RequestNumber); err != nil {
		return err
	}

	return nil
}

func (r *MaterialRequest) BeforeUpdate(tx *gorm.DB) (err error) {
	if err := SaveActivityUpdate(tx, r.ID, r, "Updated MaterialRequest"); err != nil {
		return err
	}

	return nil
}

func (r *MaterialRequest) AfterDelete(tx *gorm.DB) (err error) {
	if err := SaveActivityDelete(tx, r.ID, r, "Deleted MaterialRequest"); err != nil {
		return err
	}

	return nil
}

func (o *TransferOrder) AfterCreate(tx *gorm.DB) (err error) {
	description := fmt.Sprintf("Created TransferOrder %s for %s", o.TransferNumber, o.TotalAmount)
	if err := SaveActivityCreate(tx, o.ID, o, description); err != nil {
		return err
	}

	return nil
}

func (o *TransferOrder) BeforeUpdate(tx *gorm.DB) (err error) {
	if err := SaveActivityUpdate(tx, o.ID, o, "Updated TransferOrder"); err != nil {
		return err
	}

	return nil
}

func (s *TransferSettlement) AfterCreate(tx *gorm.DB) (err error) {
	description := fmt.Sprintf("Created TransferSettlement of %s", s.Amount)
	if err := SaveActivityCreate(tx, s.ID, s, description); err != nil {
		return err
	}

	return nil
}

func (d *DailyCashClose) AfterCreate(tx *gorm.DB) (err error) {
	if err := SaveActivityCreate(tx, d.ID, d, "Created DailyCashClose"); err != nil {
		return err
	}

	return nil
}
